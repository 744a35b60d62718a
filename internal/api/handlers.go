package api

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"globe-nav/internal/gazetteer"
	"globe-nav/internal/navigation"
	"globe-nav/internal/overlay"
	"globe-nav/internal/session"
)

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	ip := getVisitorIP(r)
	home := s.Home.For(ip)
	sess := s.Registry.Create(home)
	if s.Stats != nil {
		s.countVisit(r.Context(), ip)
	}
	writeJSON(w, http.StatusCreated, sessionCreated{ID: sess.ID, Home: home})
}

// countVisit：会话计数；Redis 可用时按日布隆去重后计访客
func (s *server) countVisit(ctx context.Context, ip string) {
	if err := s.Stats.IncrSessions(ctx); err != nil {
		s.log.Warn("stats_session_error", "err", err)
	}
	if s.Redis == nil || ip == "" {
		return
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	first, err := bloomCheckAndSet(ctx, s.Redis, visitorKey(s.now()), bloomPositions([]byte(ip), bloomBits, bloomHashes), bloomTTL)
	if err != nil {
		s.log.Debug("visitor_bloom_error", "err", err)
		return
	}
	if first {
		if err := s.Stats.IncrVisitors(ctx); err != nil {
			s.log.Warn("stats_visitor_error", "err", err)
		}
	}
}

func (s *server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Registry.Delete(r.PathValue("id")); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) state(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	resp := stateResponse{
		ID:           sess.ID,
		Home:         sess.Home,
		Navigation:   sess.Nav.State(),
		ActiveRoutes: sess.Overlay.ActiveRouteIDs(),
		Camera:       sess.Camera.State().String(),
		Scene:        sess.Graph.Snapshot(),
	}
	if resp.ActiveRoutes == nil {
		resp.ActiveRoutes = []string{}
	}
	if t, ok := sess.Overlay.Target(); ok {
		resp.Target = &t
	}
	if f := sess.Camera.Current(); f != nil {
		resp.FlightID = f.ID()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) search(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	out := sess.Nav.Search(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, out)
}

func (s *server) showRoutes(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req routesRequest
	if !decode(w, r, &req) {
		return
	}
	for _, id := range req.IDs {
		if _, ok := s.Catalog.Get(id); !ok {
			writeError(w, http.StatusBadRequest, navigation.ErrUnknownRoute.Error()+": "+id)
			return
		}
	}
	active := sess.Nav.ShowRoutes(req.IDs)
	if active == nil {
		active = []string{}
	}
	writeJSON(w, http.StatusOK, routesResponse{Active: active})
}

func (s *server) hideRoutes(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Nav.HideRoutes()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) showTarget(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req targetRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lon == nil || *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		writeError(w, http.StatusBadRequest, "lat/lon required and within range")
		return
	}
	if req.Radius < 0 {
		writeError(w, http.StatusBadRequest, "radius must be positive")
		return
	}
	sess.Overlay.ShowTarget(*req.Lon, *req.Lat, req.Name, req.Radius)
	s.writeTarget(w, sess.Overlay)
}

func (s *server) updateTarget(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req targetRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Radius <= 0 {
		writeError(w, http.StatusBadRequest, "radius must be positive")
		return
	}
	sess.Overlay.UpdateTargetRadius(req.Radius)
	s.writeTarget(w, sess.Overlay)
}

func (s *server) hideTarget(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Overlay.HideTarget()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) writeTarget(w http.ResponseWriter, m *overlay.Manager) {
	var resp targetResponse
	if t, ok := m.Target(); ok {
		resp.Target = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) markers(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req markersRequest
	if !decode(w, r, &req) {
		return
	}
	switch req.Source {
	case "", gazetteer.SourceAll, gazetteer.SourcePAK, gazetteer.SourceCHN:
	default:
		writeError(w, http.StatusBadRequest, "unknown source: "+string(req.Source))
		return
	}
	var resp markersResponse
	if req.Source != "" || req.Category != "" {
		resp.Count = sess.Nav.SetMarkerFilter(req.Source, req.Category)
	}
	switch {
	case req.Toggle:
		sess.Nav.ToggleMarkers()
	case req.Visible != nil:
		sess.Nav.SetMarkersVisible(*req.Visible)
	}
	st := sess.Nav.State()
	resp.Visible, resp.Source, resp.Category = st.MarkersVisible, st.MarkerSource, st.MarkerCategory
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) officials(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	applied := sess.Nav.ViewKeyOfficials(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied, "navigation": sess.Nav.State()})
}

func (s *server) closePanel(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.Nav.ClosePanel(navigation.Panel(r.PathValue("panel"))); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) cameraAck(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req ackRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acked": sess.Camera.Ack(req.FlightID), "camera": sess.Camera.State().String()})
}

func (s *server) routeLegend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Legend())
}

func (s *server) units(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src := gazetteer.Source(q.Get("source"))
	if src == "" {
		src = gazetteer.SourceAll
	}
	cat := q.Get("category")
	if cat == "" {
		cat = gazetteer.CategoryAll
	}
	entries := s.Gazetteer.Filter(src, cat)
	out := make([]unitView, 0, len(entries))
	for _, e := range entries {
		c := e.Category()
		out = append(out, unitView{Entry: e, Category: c.Name, Color: c.Color})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Gazetteer.Categories())
}

func (s *server) sites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gazetteer.Sites())
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	t, err := s.Stats.GetTotals(r.Context())
	if err != nil {
		s.log.Error("stats_error", "err", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	top, err := s.Stats.TopQueries(r.Context(), hours, 10)
	if err != nil {
		s.log.Warn("stats_top_error", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": true, "totals": t, "top": top})
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"globe-nav/internal/config"
	"globe-nav/internal/gazetteer"
	"globe-nav/internal/geocode"
	"globe-nav/internal/homeview"
	"globe-nav/internal/logger"
	"globe-nav/internal/navigation"
	"globe-nav/internal/routes"
	"globe-nav/internal/session"
)

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  search <query>")
	fmt.Println("  routes [id...]            (无参数显示全部路线)")
	fmt.Println("  hide")
	fmt.Println("  target <lat> <lon> [radius] [name]")
	fmt.Println("  radius <meters>")
	fmt.Println("  markers on|off|toggle")
	fmt.Println("  filter <ALL|PAK|CHN> [category]")
	fmt.Println("  officials")
	fmt.Println("  state")
	fmt.Println("  help")
	fmt.Println("  exit")
}

func dump(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// 文档注释：导航交互控制台
// 背景：不启动浏览器即可在终端驱动一个会话，打印搜索结果与场景命令数量，便于核对数据集与地理编码配置。
func main() {
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			_ = godotenv.Load(os.Args[i+1])
			i++
		}
	}
	_ = godotenv.Load(".env")
	l := logger.Setup()
	cfg := config.Load()

	gaz, err := gazetteer.Load(cfg.GazetteerDir)
	if err != nil {
		fmt.Println("gazetteer error:", err)
		os.Exit(1)
	}
	reg := session.NewRegistry(session.Shared{
		Gazetteer: gaz,
		Geocoder:  geocode.NewResolver(geocode.NewNominatim(cfg.GeocodeEndpoint, cfg.GeocodeUserAgent, cfg.GeocodeTimeout)),
		Catalog:   routes.Corridor(),
		Step:      cfg.StatusStep,
	}, 0)
	defer reg.CloseAll()
	sess := reg.Create(homeview.Default)
	l.Debug("console_session", "id", sess.ID)

	fmt.Printf("nav console ready: %d units (%d located)\n", gaz.Len(), gaz.LocatedCount())
	printHelp()
	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		case "search":
			before := sess.Graph.Len()
			out := sess.Nav.Search(ctx, strings.TrimSpace(strings.TrimPrefix(line, parts[0])))
			dump(out)
			fmt.Printf("status: %s | entities %d -> %d\n", sess.Nav.State().Status, before, sess.Graph.Len())
		case "routes":
			if len(parts) == 1 {
				sess.Overlay.ShowAllRoutes()
				fmt.Println("active:", sess.Overlay.ActiveRouteIDs())
				continue
			}
			fmt.Println("active:", sess.Nav.ShowRoutes(parts[1:]))
		case "hide":
			sess.Nav.HideRoutes()
			fmt.Println("ok")
		case "target":
			if len(parts) < 3 {
				fmt.Println("usage: target <lat> <lon> [radius] [name]")
				continue
			}
			lat, err1 := strconv.ParseFloat(parts[1], 64)
			lon, err2 := strconv.ParseFloat(parts[2], 64)
			if err1 != nil || err2 != nil {
				fmt.Println("bad coordinates")
				continue
			}
			var radius float64
			if len(parts) > 3 {
				radius, _ = strconv.ParseFloat(parts[3], 64)
			}
			name := "Target"
			if len(parts) > 4 {
				name = strings.Join(parts[4:], " ")
			}
			sess.Overlay.ShowTarget(lon, lat, name, radius)
			t, _ := sess.Overlay.Target()
			dump(t)
		case "radius":
			if len(parts) < 2 {
				fmt.Println("usage: radius <meters>")
				continue
			}
			r, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || r <= 0 {
				fmt.Println("bad radius")
				continue
			}
			sess.Overlay.UpdateTargetRadius(r)
			fmt.Println("ok")
		case "markers":
			arg := ""
			if len(parts) > 1 {
				arg = strings.ToLower(parts[1])
			}
			switch arg {
			case "on":
				sess.Nav.SetMarkersVisible(true)
			case "off":
				sess.Nav.SetMarkersVisible(false)
			default:
				sess.Nav.ToggleMarkers()
			}
			fmt.Println("visible:", sess.Nav.State().MarkersVisible)
		case "filter":
			if len(parts) < 2 {
				fmt.Println("usage: filter <ALL|PAK|CHN> [category]")
				continue
			}
			cat := gazetteer.CategoryAll
			if len(parts) > 2 {
				cat = strings.Join(parts[2:], " ")
			}
			n := sess.Nav.SetMarkerFilter(gazetteer.Source(strings.ToUpper(parts[1])), cat)
			fmt.Println("markers:", n)
		case "officials":
			fmt.Println("applied:", sess.Nav.ViewKeyOfficials(ctx))
		case "state":
			st := sess.Nav.State()
			dump(struct {
				Navigation navigation.NavigationState `json:"navigation"`
				Routes     []string                   `json:"routes"`
				Camera     string                     `json:"camera"`
				Entities   int                        `json:"entities"`
			}{st, sess.Overlay.ActiveRouteIDs(), sess.Camera.State().String(), sess.Graph.Len()})
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

package gazetteer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"globe-nav/internal/logger"
)

// 数据集文件约定：army.json 为来源 A，pla.json 为来源 B
var datasets = []struct {
	file   string
	source Source
}{
	{"army.json", SourcePAK},
	{"pla.json", SourceCHN},
}

// 文档注释：从数据目录加载两个静态数据集
// 背景：两个文件并行读取解析，按 A 后 B 的顺序拼接，并为每条记录注入来源标记。
// 约束：文件缺失视为空数据集并记录告警；文件存在但格式错误返回 error。
func Load(dir string) (*Gazetteer, error) {
	parts := make([][]Entry, len(datasets))
	var g errgroup.Group
	for i, ds := range datasets {
		i, ds := i, ds
		g.Go(func() error {
			es, err := loadFile(filepath.Join(dir, ds.file), ds.source)
			if err != nil {
				return err
			}
			parts[i] = es
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []Entry
	for _, p := range parts {
		all = append(all, p...)
	}
	gz := New(all)
	logger.L().Info("gazetteer_loaded", "dir", dir, "entries", len(all), "located", gz.LocatedCount())
	return gz, nil
}

func loadFile(path string, src Source) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.L().Warn("gazetteer_dataset_missing", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(b, src)
}

// Decode：解析单个数据集并注入来源
func Decode(b []byte, src Source) ([]Entry, error) {
	var es []Entry
	if err := json.Unmarshal(b, &es); err != nil {
		return nil, fmt.Errorf("decode %s dataset: %w", src, err)
	}
	for i := range es {
		es[i].Source = src
	}
	return es, nil
}

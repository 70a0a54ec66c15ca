package filter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NameLists 是名称 allow/deny 列表的独立配置文件结构，
// 便于不重启进程之外单独维护词表
type NameLists struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

func LoadLists(path string) (*NameLists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lists file %s: %w", path, err)
	}
	var lists NameLists
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parse lists file %s: %w", path, err)
	}
	return &lists, nil
}

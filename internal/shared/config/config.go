package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultConfigRelPath = "configs/conf.yml"

// DefaultEnvPrefix 是环境变量覆盖的默认前缀，例如 ZAPPY_HTTP_PORT 覆盖 http.port。
const DefaultEnvPrefix = "ZAPPY"

type Option func(*options)

type options struct {
	envPrefix string
	onChange  func(v *viper.Viper)
}

func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// OnChange 注册配置文件变更回调，回调在 fsnotify 的 goroutine 上执行。
func OnChange(fn func(v *viper.Viper)) Option {
	return func(o *options) { o.onChange = fn }
}

// Load 把 YAML 配置解码到 out，返回实际使用的配置路径。
//
// 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string, out any, opts ...Option) (string, error) {
	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	path, err := Resolve(cfgName)
	if err != nil {
		return "", err
	}
	if err := load(path, out, o); err != nil {
		return "", err
	}
	return path, nil
}

// Resolve 返回配置文件的绝对路径。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfgName != "" {
		if !filepath.IsAbs(cfgName) {
			cfgName = filepath.Join(curDir, cfgName)
		}
		if !fileExist(cfgName) {
			return "", fmt.Errorf("config file not exist, configPath=%v", cfgName)
		}
		return cfgName, nil
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config file not exist, searched %s from: %s", defaultConfigRelPath, startDir)
		}
		dir = parent
	}
}

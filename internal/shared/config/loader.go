package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

func load(configPath string, out any, o options) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configPath, err)
	}
	if err := Decode(v, out); err != nil {
		return fmt.Errorf("decode config %s: %w", configPath, err)
	}

	// out 只在启动时写入一次；热更新交给回调自行解码到新值，避免并发读写同一份配置。
	if o.onChange != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
				o.onChange(v)
			}
		})
		v.WatchConfig()
	}
	return nil
}

// Decode 按 mapstructure 标签解码，支持 "3s" 形式的时长与逗号分隔的字符串切片。
func Decode(v *viper.Viper, out any) error {
	return v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}

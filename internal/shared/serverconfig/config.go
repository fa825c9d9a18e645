package serverconfig

import (
	"os"

	"github.com/spf13/viper"

	"zappy/internal/shared/config"
)

var Conf Config

// Load 读取 cfgName（为空时向上查找 configs/conf.yml）到 Conf。
// onChange 非空时，配置文件变更后会收到重新解码的新配置；Conf 本身保持启动时的值。
func Load(cfgName string, onChange func(Config)) (string, error) {
	var opts []config.Option
	if onChange != nil {
		opts = append(opts, config.OnChange(func(v *viper.Viper) {
			var next Config
			if err := config.Decode(v, &next); err != nil {
				return
			}
			onChange(next)
		}))
	}
	path, err := config.Load(cfgName, &Conf, opts...)
	if err != nil {
		return "", err
	}
	// 环境变量优先；若未设置则回填配置中的 jwt_secret，兼容本地开发场景。
	if os.Getenv("JWT_SECRET") == "" && Conf.Security.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.Security.JWTSecret)
	}
	return path, nil
}

package serverconfig

import "time"

type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	WS       WSConfig       `yaml:"ws" mapstructure:"ws"`
	GRPC     GRPCConfig     `yaml:"grpc" mapstructure:"grpc"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	MongoDB  MongoDBConfig  `yaml:"mongodb" mapstructure:"mongodb"`
	Logic    LogicConfig    `yaml:"logic" mapstructure:"logic"`
	Security SecurityConfig `yaml:"security" mapstructure:"security"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// WSConfig 描述挂在 HTTP 服务上的 websocket 观察端点。
type WSConfig struct {
	Path          string        `yaml:"path" mapstructure:"path"`
	NeedSecret    bool          `yaml:"need_secret" mapstructure:"need_secret"`
	FrameInterval time.Duration `yaml:"frame_interval" mapstructure:"frame_interval"`
}

type GRPCConfig struct {
	Enable bool   `yaml:"enable" mapstructure:"enable"`
	Host   string `yaml:"host" mapstructure:"host"`
	Port   int    `yaml:"port" mapstructure:"port"`
}

// DatabaseConfig 供 gorm 使用，Driver 取 mysql 或 postgres。
type DatabaseConfig struct {
	Driver   string        `yaml:"driver" mapstructure:"driver"`
	Host     string        `yaml:"host" mapstructure:"host"`
	Port     int           `yaml:"port" mapstructure:"port"`
	User     string        `yaml:"user" mapstructure:"user"`
	Password string        `yaml:"password" mapstructure:"password"`
	DBName   string        `yaml:"dbname" mapstructure:"dbname"`
	Charset  string        `yaml:"charset" mapstructure:"charset"`
	SSLMode  string        `yaml:"sslmode" mapstructure:"sslmode"`
	MaxIdle  int           `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int           `yaml:"max_conn" mapstructure:"max_conn"`
	SlowSQL  time.Duration `yaml:"slow_sql" mapstructure:"slow_sql"`
	ShowSQL  bool          `yaml:"show_sql" mapstructure:"show_sql"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

// LogicConfig 是世界规则的原始配置，由 gameconfig/rules 在启动时解析一次。
type LogicConfig struct {
	ServerID      int           `yaml:"server_id" mapstructure:"server_id"`
	WorldID       int           `yaml:"world_id" mapstructure:"world_id"`
	Width         int           `yaml:"width" mapstructure:"width"`
	Height        int           `yaml:"height" mapstructure:"height"`
	TeamSize      int           `yaml:"team_size" mapstructure:"team_size"`
	Teams         []string      `yaml:"teams" mapstructure:"teams"`
	Spawn         string        `yaml:"spawn" mapstructure:"spawn"` // origin/random
	Seed          uint64        `yaml:"seed" mapstructure:"seed"`   // 0 表示按时间取种
	Store         string        `yaml:"store" mapstructure:"store"` // memory/mongo/mysql
	FlushInterval time.Duration `yaml:"flush_interval" mapstructure:"flush_interval"`
}

type SecurityConfig struct {
	NeedAuth  bool          `yaml:"need_auth" mapstructure:"need_auth"`
	JWTSecret string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lovelydayss/shardcache/log"
)

// GlobalConfig 全局配置
type GlobalConfig struct {
	Server ServerConfig `yaml:"server"` // 监听地址配置
	Shard  ShardConfig  `yaml:"shard"`  // 分片配置
	Log    log.Config   `yaml:"log"`    // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	RESPAddress     string `yaml:"resp_address"`     // RESP 协议监听地址
	MemcacheAddress string `yaml:"memcache_address"` // memcache 协议监听地址
	MaxReadBuffer   int    `yaml:"max_read_buffer"`  // 单连接读缓冲区上限（字节）
}

// ShardConfig 分片配置
type ShardConfig struct {
	Count int `yaml:"count"` // 分片（线程）数量
}

// Config 全局配置对象
var Config = &GlobalConfig{
	Server: ServerConfig{
		RESPAddress:     ":6399",
		MemcacheAddress: ":6400",
		MaxReadBuffer:   32 * 1024,
	},
	Shard: ShardConfig{
		Count: 8,
	},
}

func init() {
	file, err := os.Open("./config.yaml")
	if err != nil {
		return
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(Config); err != nil {
		log.Errorf("error decoding config yaml: %s", err.Error())
	}
}

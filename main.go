package main

import (
	"github.com/lovelydayss/shardcache/config"
	"github.com/lovelydayss/shardcache/log"
	"github.com/lovelydayss/shardcache/server"
)

func main() {
	log.Init(config.Config.Log)

	srv, err := server.ConstructServer()
	if err != nil {
		log.Fatalf("server construct failed: %s", err.Error())
	}

	if err := srv.Serve(config.Config.Server.RESPAddress, config.Config.Server.MemcacheAddress); err != nil {
		log.Fatalf("server run failed: %s", err.Error())
	}
}

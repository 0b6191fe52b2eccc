package server

import (
	"go.uber.org/dig"

	"github.com/lovelydayss/shardcache/config"
	"github.com/lovelydayss/shardcache/store"
)

// container wires the store and the server the way the teacher's
// factory.go wires datastore/database/handler: one dig.Container,
// providers registered at init, a single top-level construct function.
var container = dig.New()

func init() {
	_ = container.Provide(provideStore)
	_ = container.Provide(NewServer)
}

func provideStore() *store.Store {
	return store.NewStore(config.Config.Shard.Count)
}

// ConstructServer resolves the full dependency graph and returns the
// top-level Server ready to Serve.
func ConstructServer() (*Server, error) {
	var s *Server
	if err := container.Invoke(func(_s *Server) {
		s = _s
	}); err != nil {
		return nil, err
	}
	return s, nil
}

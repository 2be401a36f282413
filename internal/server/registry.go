package server

import "sync"

// Registry maps live connection ids to their clients. Pure bookkeeping;
// the room leave cascade on disconnect is driven by the caller.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

func (reg *Registry) Register(c *client) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.clients[c.id] = c
}

func (reg *Registry) Resolve(connectionID string) (*client, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.clients[connectionID]
	return c, ok
}

func (reg *Registry) Unregister(connectionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.clients, connectionID)
}

// Clients snapshots every live connection, for process-wide pushes such
// as leaderboard updates.
func (reg *Registry) Clients() []*client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	list := make([]*client, 0, len(reg.clients))
	for _, c := range reg.clients {
		list = append(list, c)
	}
	return list
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.clients)
}

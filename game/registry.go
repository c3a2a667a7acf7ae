package game

// Registry tracks the live connections of a room as two lookup tables,
// playerID→Conn and Conn→playerID. Only the owning room goroutine
// touches it, so no locking is needed.
type Registry struct {
	byPlayer map[string]Conn
	byConn   map[Conn]string
}

func NewRegistry() *Registry {
	return &Registry{
		byPlayer: make(map[string]Conn),
		byConn:   make(map[Conn]string),
	}
}

// Attach binds a connection to a player, closing any previous one.
func (r *Registry) Attach(playerID string, conn Conn) {
	if old, ok := r.byPlayer[playerID]; ok && old != conn {
		delete(r.byConn, old)
		old.Close()
	}
	r.byPlayer[playerID] = conn
	r.byConn[conn] = playerID
}

// Detach removes a connection and returns the player it belonged to.
func (r *Registry) Detach(conn Conn) (string, bool) {
	playerID, ok := r.byConn[conn]
	if !ok {
		return "", false
	}
	delete(r.byConn, conn)
	// Only drop the forward mapping if it still points at this conn;
	// a reconnect may already have replaced it.
	if cur, ok := r.byPlayer[playerID]; ok && cur == conn {
		delete(r.byPlayer, playerID)
	}
	return playerID, true
}

// Remove drops a player's connection by id.
func (r *Registry) Remove(playerID string) {
	if conn, ok := r.byPlayer[playerID]; ok {
		delete(r.byPlayer, playerID)
		delete(r.byConn, conn)
	}
}

// Connected reports whether the player has a live transport.
func (r *Registry) Connected(playerID string) bool {
	_, ok := r.byPlayer[playerID]
	return ok
}

// Send delivers an envelope to one player, if connected.
func (r *Registry) Send(playerID string, env Envelope) {
	if conn, ok := r.byPlayer[playerID]; ok {
		conn.Send(env)
	}
}

// Broadcast delivers an envelope to every connected member.
func (r *Registry) Broadcast(env Envelope) {
	for _, conn := range r.byPlayer {
		conn.Send(env)
	}
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	return len(r.byPlayer)
}

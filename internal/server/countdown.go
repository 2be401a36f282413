package server

import "time"

// The countdown is a chain of scheduled sends, not a blocking wait: the
// room keeps handling commands (including leaves) while ticks are
// pending. Start broadcasts the initial count immediately; each timer
// fire emits the next value, and zero is the terminal "go" marker.

func (s *Server) startCountdown(room *Room) {
	interval := time.Duration(s.cfg.CountdownTickSeconds) * time.Second
	s.scheduleTick(room, s.cfg.CountdownTicks-1, interval)
}

func (s *Server) scheduleTick(room *Room, value int, interval time.Duration) {
	s.timersMu.Lock()
	if existing, ok := s.timers[room.ID]; ok {
		existing.Stop()
	}
	s.timers[room.ID] = time.AfterFunc(interval, func() {
		if !room.countdownTick(value) {
			s.cancelCountdown(room.ID)
			return
		}
		if value > 0 {
			s.scheduleTick(room, value-1, interval)
			return
		}
		s.cancelCountdown(room.ID)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelCountdown(roomID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[roomID]; ok {
		timer.Stop()
		delete(s.timers, roomID)
	}
}

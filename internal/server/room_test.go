package server

import (
	"fmt"
	"testing"
)

func TestJoinFirstPlayerBecomesHost(t *testing.T) {
	_, room, _ := waitingRoom(t, "Ada")

	snap := room.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(snap.Players))
	}
	if !snap.Players[0].IsHost {
		t.Fatal("expected first joiner to be host")
	}
	if snap.Status != statusWaiting {
		t.Fatalf("expected waiting status, got %s", snap.Status)
	}
}

func TestJoinRespectsCapacity(t *testing.T) {
	_, room, _ := waitingRoom(t, "Ada", "Bob", "Cleo", "Dina")

	extra := newTestClient("extra")
	err := room.Join(&Participant{ID: extra.id, Name: "Eve"}, extra)
	if err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestJoinRejectedAfterStart(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}

	late := newTestClient("late")
	err := room.Join(&Participant{ID: late.id, Name: "Late"}, late)
	if err != ErrAlreadyStarted {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestToggleReadyFlipsAndFlipsBack(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	bob := clients[1]

	// Helper already toggled Bob ready once.
	snap := room.Snapshot()
	if !snap.Players[1].Ready {
		t.Fatal("expected Bob ready")
	}
	if err := room.ToggleReady(bob.id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	snap = room.Snapshot()
	if snap.Players[1].Ready {
		t.Fatal("expected Bob not ready after second toggle")
	}
}

func TestToggleReadyRejectsHost(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.ToggleReady(clients[0].id); err != ErrHostReady {
		t.Fatalf("expected ErrHostReady, got %v", err)
	}
}

func TestSelectModeHostOnly(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")

	if err := room.SelectMode(clients[1].id, ModeSequence); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := room.SelectMode(clients[0].id, "TRIVIA"); err != ErrUnknownMode {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if err := room.SelectMode(clients[0].id, ModeSequence); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	if room.Mode() != ModeSequence {
		t.Fatalf("expected mode %s, got %s", ModeSequence, room.Mode())
	}
}

func TestStartGuards(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")

	if err := room.Start(clients[1].id, 3); err != ErrNotHost {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}

	// Bob un-readies; start must be refused.
	if err := room.ToggleReady(clients[1].id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := room.Start(clients[0].id, 3); err != ErrNotAllReady {
		t.Fatalf("expected ErrNotAllReady, got %v", err)
	}

	if err := room.ToggleReady(clients[1].id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if room.Status() != statusInProgress {
		t.Fatalf("expected in_progress, got %s", room.Status())
	}
	if err := room.Start(clients[0].id, 3); err != ErrAlreadyStarted {
		t.Fatalf("expected ErrAlreadyStarted on double start, got %v", err)
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada")
	if err := room.Start(clients[0].id, 3); err != ErrNeedMorePlayers {
		t.Fatalf("expected ErrNeedMorePlayers, got %v", err)
	}
}

func TestStartResetsSessionState(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, p := range room.Snapshot().Players {
		if p.Score != 0 || p.Finished {
			t.Fatalf("expected zeroed session state, got %+v", p)
		}
	}
}

func TestHostLeaveTransfersToEarliestJoiner(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob", "Cleo")

	empty := room.Leave(clients[0].id, clients[0])
	if empty {
		t.Fatal("room should not be empty")
	}
	snap := room.Snapshot()
	if snap.Players[0].Name != "Bob" || !snap.Players[0].IsHost {
		t.Fatalf("expected Bob promoted to host, got %+v", snap.Players[0])
	}
	if snap.Players[0].Ready {
		t.Fatal("promoted host should have ready cleared")
	}
	if snap.Players[1].IsHost {
		t.Fatal("expected a single host")
	}
}

func TestLeaveLastPlayerReportsEmpty(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if empty := room.Leave(clients[1].id, clients[1]); empty {
		t.Fatal("room still has the host")
	}
	if empty := room.Leave(clients[0].id, clients[0]); !empty {
		t.Fatal("expected empty after last leave")
	}
}

func TestFinishFinalizesWhenAllDone(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}

	rankings, err := room.Finish(clients[0].id, 220)
	if err != nil {
		t.Fatalf("first finish: %v", err)
	}
	if rankings != nil {
		t.Fatal("rankings should not be computed until everyone finishes")
	}
	if room.Status() != statusInProgress {
		t.Fatalf("expected in_progress, got %s", room.Status())
	}

	rankings, err = room.Finish(clients[1].id, 180)
	if err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if room.Status() != statusFinished {
		t.Fatalf("expected finished, got %s", room.Status())
	}
	if len(rankings) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(rankings))
	}
	// Reaction mode ranks ascending, so Bob's 180ms wins.
	if rankings[0].Name != "Bob" || rankings[0].Rank != 1 {
		t.Fatalf("expected Bob first, got %+v", rankings[0])
	}
}

func TestFinishRejectsDoubleReport(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := room.Finish(clients[0].id, 220); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := room.Finish(clients[0].id, 150); err != ErrAlreadyFinished {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
}

func TestScoreUpdatesRequireSession(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")

	if err := room.UpdateScore(clients[0].id, 10); err != ErrNotInProgress {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if _, err := room.Finish(clients[0].id, 10); err != ErrNotInProgress {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}

	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := room.UpdateScore(clients[0].id, 42); err != nil {
		t.Fatalf("update score: %v", err)
	}
	if got := room.Snapshot().Players[0].Score; got != 42 {
		t.Fatalf("expected live score 42, got %d", got)
	}
}

func TestCountdownTickStopsWhenSessionEnds(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !room.countdownTick(2) {
		t.Fatal("tick should run while in progress")
	}

	if _, err := room.Finish(clients[0].id, 100); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := room.Finish(clients[1].id, 120); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if room.countdownTick(1) {
		t.Fatal("tick should stop once the session finished")
	}
}

func TestChatHistoryIsCapped(t *testing.T) {
	directory := newDirectory(newWSHub(), 0, 3)
	host := newTestClient("c0")
	room, err := directory.Create(ModeReaction, defaultSettings(), &Participant{ID: host.id, Name: "Ada"}, host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := room.PostChat(host.id, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("post chat: %v", err)
		}
	}
	history := room.ChatHistory()
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	if history[0].Text != "message 2" || history[2].Text != "message 4" {
		t.Fatalf("expected oldest messages evicted, got %+v", history)
	}
}

func TestChatRejectsUnknownSender(t *testing.T) {
	_, room, _ := waitingRoom(t, "Ada")
	if _, err := room.PostChat("ghost", "hello"); err != ErrNotInRoom {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}
}

func TestRoomBroadcastOrderPerClient(t *testing.T) {
	_, room, clients := waitingRoom(t, "Ada", "Bob")
	for _, c := range clients {
		drainEvents(t, c)
	}

	if err := room.Start(clients[0].id, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := room.UpdateScore(clients[0].id, 10); err != nil {
		t.Fatalf("update score: %v", err)
	}

	want := []string{msgRoomUpdate, msgGameStarting, msgRoomUpdate}
	for _, c := range clients {
		got := drainEvents(t, c)
		if len(got) != len(want) {
			t.Fatalf("expected %d events, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	}
}

package services

import (
	"sync"

	"github.com/google/uuid"
)

// TournamentLocker serializes mutations per tournament: submissions for
// different tournaments proceed independently, submissions within one
// tournament run one at a time because bracket advancement reads and writes
// sibling state. The expected hold time is a single match-result application.
type TournamentLocker struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{}
}

// Lock acquires the tournament's mutex and returns its unlock function.
func (l *TournamentLocker) Lock(tournamentID uuid.UUID) func() {
	mu, _ := l.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

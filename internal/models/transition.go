package models

import (
	"fmt"
	"strings"
)

type Actor string

const (
	ActorOwner Actor = "owner"
	ActorAdmin Actor = "admin"
)

type Transition struct {
	From  ReservationStatus
	To    ReservationStatus
	Actor Actor
}

var transitions = []Transition{
	{From: StatusPending, To: StatusActive, Actor: ActorAdmin},
	{From: StatusPending, To: StatusRejected, Actor: ActorAdmin},
	{From: StatusPending, To: StatusCancelled, Actor: ActorAdmin},
	{From: StatusPending, To: StatusCancelled, Actor: ActorOwner},
	{From: StatusActive, To: StatusCancelled, Actor: ActorAdmin},
	{From: StatusActive, To: StatusCancelled, Actor: ActorOwner},
}

var transitionSet = func() map[Transition]bool {
	m := make(map[Transition]bool, len(transitions))
	for _, t := range transitions {
		m[t] = true
	}
	return m
}()

// NextStatuses lists the statuses reachable from the given one by any actor.
func NextStatuses(from ReservationStatus) []ReservationStatus {
	var next []ReservationStatus
	seen := map[ReservationStatus]bool{}
	for _, t := range transitions {
		if t.From == from && !seen[t.To] {
			next = append(next, t.To)
			seen[t.To] = true
		}
	}
	return next
}

func CanTransition(from, to ReservationStatus, actor Actor) error {
	if transitionSet[Transition{From: from, To: to, Actor: actor}] {
		return nil
	}
	next := NextStatuses(from)
	allowed := "none"
	if len(next) > 0 {
		parts := make([]string, len(next))
		for i, s := range next {
			parts[i] = string(s)
		}
		allowed = strings.Join(parts, ", ")
	}
	return fmt.Errorf("cannot move reservation from %s to %s as %s (allowed: %s)", from, to, actor, allowed)
}

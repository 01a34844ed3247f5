// services/trigger.go - Fire-and-forget achievement trigger queue
package services

import (
	"log"

	"github.com/google/uuid"
)

// Trigger is one queued evaluation request.
type Trigger struct {
	ID      string // short correlation id for log lines
	UserID  uint
	Action  Action
	Payload EchoPayload
}

// TriggerService decouples achievement evaluation from the request
// path: handlers enqueue and return, a single worker drains the queue.
// A failed or dropped evaluation only ever costs a delayed grant.
type TriggerService struct {
	engine *AchievementService
	hub    *FeedHub
	queue  chan Trigger
	done   chan struct{}
}

var triggerService *TriggerService

// InitTriggerService initializes the singleton trigger service.
func InitTriggerService(engine *AchievementService, hub *FeedHub, queueSize int) {
	triggerService = &TriggerService{
		engine: engine,
		hub:    hub,
		queue:  make(chan Trigger, queueSize),
		done:   make(chan struct{}),
	}
}

// GetTriggerService returns the initialized trigger service.
func GetTriggerService() *TriggerService {
	return triggerService
}

// Start launches the evaluation worker.
func (s *TriggerService) Start() {
	go s.run()
}

// Stop drains the queue and waits for the worker to exit.
func (s *TriggerService) Stop() {
	close(s.queue)
	<-s.done
}

// Dispatch enqueues a trigger without blocking. When the queue is full
// the trigger is dropped with a log line; the same predicates re-fire
// on the user's next natural trigger.
func (s *TriggerService) Dispatch(userID uint, action Action, payload EchoPayload) {
	t := Trigger{
		ID:      uuid.New().String()[:8],
		UserID:  userID,
		Action:  action,
		Payload: payload,
	}

	select {
	case s.queue <- t:
	default:
		log.Printf("[%s] trigger queue full, dropping %s for user %d", t.ID, action, userID)
	}
}

func (s *TriggerService) run() {
	defer close(s.done)
	for t := range s.queue {
		s.process(t)
	}
}

func (s *TriggerService) process(t Trigger) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] evaluation panic for user %d action %s: %v", t.ID, t.UserID, t.Action, r)
		}
	}()

	for _, grant := range s.engine.Evaluate(t.UserID, t.Action, t.Payload) {
		log.Printf("[%s] granted %q to user %d", t.ID, grant.Achievement, grant.UserID)
		if s.hub != nil {
			s.hub.Broadcast(FeedEvent{
				Type:        FeedAchievementGranted,
				EchoID:      t.Payload.EchoID,
				UserID:      grant.UserID,
				Achievement: grant.Achievement,
			})
		}
	}
}

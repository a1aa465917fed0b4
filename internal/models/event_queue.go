package models

import (
	"container/heap"
	"sync"
	"time"
)

// Simulation event types.
const (
	EventPlaceOrder        = "PlaceOrder"
	EventRefreshInsights   = "RefreshInsights"
	EventForecastDemand    = "ForecastDemand"
	EventSuggestOrders     = "SuggestOrders"
	EventRespondSuggestion = "RespondSuggestion"
	EventDispatchRoutes    = "DispatchRoutes"
	EventGenerateReports   = "GenerateReports"
	EventRespondReport     = "RespondReport"
	EventCloseDay          = "CloseDay"
)

// Event represents a simulation event
type Event struct {
	Time time.Time
	Type string
	Data interface{}

	seq uint64
}

// EventQueue is a priority queue of events. Events due at the same time
// come out in the order they were enqueued.
type EventQueue struct {
	events []*Event
	next   uint64
	mutex  sync.Mutex
}

type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if !h[i].Time.Equal(h[j].Time) {
		return h[i].Time.Before(h[j].Time)
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]*Event, 0)}
}

func (eq *EventQueue) Enqueue(event *Event) {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	event.seq = eq.next
	eq.next++
	heap.Push((*eventHeap)(&eq.events), event)
}

// Dequeue removes and returns the earliest event, nil when empty.
func (eq *EventQueue) Dequeue() *Event {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	if len(eq.events) == 0 {
		return nil
	}
	return heap.Pop((*eventHeap)(&eq.events)).(*Event)
}

// Peek returns the earliest event without removing it
func (eq *EventQueue) Peek() *Event {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	if len(eq.events) == 0 {
		return nil
	}
	return eq.events[0]
}

func (eq *EventQueue) IsEmpty() bool {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	return len(eq.events) == 0
}

func (eq *EventQueue) Len() int {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	return len(eq.events)
}

// DequeueUntil removes and returns, in order, every event due at or before t.
func (eq *EventQueue) DequeueUntil(t time.Time) []*Event {
	eq.mutex.Lock()
	defer eq.mutex.Unlock()
	var batch []*Event
	for len(eq.events) > 0 && !eq.events[0].Time.After(t) {
		batch = append(batch, heap.Pop((*eventHeap)(&eq.events)).(*Event))
	}
	return batch
}

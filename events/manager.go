// Package events implements the script-visible event subscription system
// (subscribe/unsubscribe/fire) described for the bot runtime: a
// process-wide manager keyed by event type, with subscribe/unsubscribe
// deferred through pending lists so a callback firing cannot see its own
// subscriber list mutated mid-iteration.
package events

// Type identifies a class of event a bot script can subscribe to.
type Type uint8

const (
	ShipSpawned Type = iota
	ShipKilled
	MsgReceived
	PlayerJoined
	PlayerLeft
)

// Handle identifies a subscriber: one per bot's scripting interpreter
// instance. The events package does not interpret it beyond identity and
// ordering.
type Handle interface{}

// Payload is passed to the fired callback; its shape depends on Type and
// is interpreted by the bot runtime, not by this package.
type Payload interface{}

type perTypeState struct {
	active       []Handle
	pendingSub   []Handle
	pendingUnsub []Handle
}

// Manager is the event subscription/delivery system.
type Manager struct {
	byType     map[Type]*perTypeState
	anyPending bool

	// dispatch is supplied by the caller: given a handle, type, and
	// payload, invoke the script callback and report any error. The
	// manager does not know how to call into a scripting interpreter.
	dispatch func(h Handle, evt Type, payload Payload) error

	onError func(h Handle, evt Type, err error)
}

// NewManager constructs a Manager. dispatch is called once per active
// subscriber per fired event; onError (may be nil) receives any error
// dispatch returns, without aborting delivery to the remaining subscribers.
func NewManager(dispatch func(h Handle, evt Type, payload Payload) error, onError func(h Handle, evt Type, err error)) *Manager {
	return &Manager{
		byType:   make(map[Type]*perTypeState),
		dispatch: dispatch,
		onError:  onError,
	}
}

func (m *Manager) stateFor(evt Type) *perTypeState {
	st, ok := m.byType[evt]
	if !ok {
		st = &perTypeState{}
		m.byType[evt] = st
	}
	return st
}

func containsHandle(list []Handle, h Handle) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

func removeHandle(list []Handle, h Handle) []Handle {
	out := list[:0]
	for _, x := range list {
		if x != h {
			out = append(out, x)
		}
	}
	return out
}

// Subscribe enqueues h for evt, applied on the next Update. Re-subscribing
// an already-active or already-pending handle is a silent no-op.
func (m *Manager) Subscribe(h Handle, evt Type) {
	st := m.stateFor(evt)
	if containsHandle(st.active, h) || containsHandle(st.pendingSub, h) {
		return
	}
	st.pendingSub = append(st.pendingSub, h)
	st.pendingUnsub = removeHandle(st.pendingUnsub, h)
	m.anyPending = true
}

// Unsubscribe enqueues h's removal from evt, applied on the next Update.
func (m *Manager) Unsubscribe(h Handle, evt Type) {
	st := m.stateFor(evt)
	if !containsHandle(st.active, h) && !containsHandle(st.pendingSub, h) {
		return
	}
	st.pendingSub = removeHandle(st.pendingSub, h)
	if !containsHandle(st.pendingUnsub, h) {
		st.pendingUnsub = append(st.pendingUnsub, h)
	}
	m.anyPending = true
}

// UnsubscribeImmediate removes h from all three lists for evt synchronously,
// used on bot/interpreter destruction so a dead handle can never be
// delivered to, even mid-tick.
func (m *Manager) UnsubscribeImmediate(h Handle, evt Type) {
	st := m.stateFor(evt)
	st.active = removeHandle(st.active, h)
	st.pendingSub = removeHandle(st.pendingSub, h)
	st.pendingUnsub = removeHandle(st.pendingUnsub, h)
}

// UnsubscribeImmediateAll removes h from every event type's lists, for use
// when a bot's interpreter is being freed.
func (m *Manager) UnsubscribeImmediateAll(h Handle) {
	for evt := range m.byType {
		m.UnsubscribeImmediate(h, evt)
	}
}

// FireEvent calls dispatch for every active subscriber of evt, in
// subscription order, skipping sender if it is non-nil and matches a
// subscriber (the message-fired semantics suppressing delivery to the
// sender). Dispatch errors are reported via onError and do not abort
// delivery to the remaining subscribers.
func (m *Manager) FireEvent(evt Type, sender Handle, payload Payload) {
	st, ok := m.byType[evt]
	if !ok {
		return
	}
	for _, h := range st.active {
		if sender != nil && h == sender {
			continue
		}
		if err := m.dispatch(h, evt, payload); err != nil && m.onError != nil {
			m.onError(h, evt, err)
		}
	}
}

// Update applies all pending unsubscribes then pending subscribes for
// every event type, then clears the pending lists and the any-pending
// flag. Called once between event firings within a tick, never from
// inside FireEvent.
func (m *Manager) Update() {
	if !m.anyPending {
		return
	}
	for _, st := range m.byType {
		for _, h := range st.pendingUnsub {
			st.active = removeHandle(st.active, h)
		}
		for _, h := range st.pendingSub {
			if !containsHandle(st.active, h) {
				st.active = append(st.active, h)
			}
		}
		st.pendingUnsub = st.pendingUnsub[:0]
		st.pendingSub = st.pendingSub[:0]
	}
	m.anyPending = false
}

package chat

import (
	"github.com/GabrielG71/online-chat/logger"
	"github.com/GabrielG71/online-chat/module/chat/model"
)

// Dispatcher resolves recipients in the registry and pushes encoded events
// to their sinks. A sink whose write fails is assumed permanently dead and
// evicted; the peer's client re-registers when it reconnects.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// DeliverMessage pushes a new_message event to the sender (send
// confirmation echo) and to the receiver. A party without a live stream is
// skipped silently; they will see the message on their next history fetch.
// Each push is failure-isolated: one broken sink never aborts the other.
func (d *Dispatcher) DeliverMessage(senderID, receiverID string, msg *model.Message) {
	ev := NewMessageEvent(msg)
	d.push(senderID, ev)
	if receiverID != senderID {
		d.push(receiverID, ev)
	}
}

// DeliverTyping pushes a typing_status event to the receiver only.
// Typing never echoes to the sender.
func (d *Dispatcher) DeliverTyping(senderID, receiverID string, isTyping bool) {
	d.push(receiverID, NewTypingEvent(senderID, isTyping))
}

func (d *Dispatcher) push(userID string, ev Event) {
	sink, ok := d.reg.Lookup(userID)
	if !ok {
		logger.Debugf("[dispatch] no live stream user=%s type=%s", userID, ev.Type)
		return
	}
	if err := sink.WriteEvent(ev); err != nil {
		logger.Warnf("[dispatch] write failed, evicting user=%s type=%s err=%v", userID, ev.Type, err)
		d.reg.UnregisterSink(userID, sink)
	}
}

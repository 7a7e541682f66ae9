package sim

// Bus routes messages between agents. Every message is delivered through a
// MessageDeliveryEvent, even at zero delay, so information never outruns
// same-tick goods movements. A nonzero information delay models slow EDI or
// manual order processing between echelons.
type Bus struct {
	infoDelay int64
	sent      map[MessageKind]int64
}

func NewBus(infoDelay int64) *Bus {
	return &Bus{
		infoDelay: infoDelay,
		sent:      make(map[MessageKind]int64),
	}
}

// DeliveryTick returns the tick at which a message sent now lands.
func (b *Bus) DeliveryTick(sentAt int64) int64 {
	return sentAt + b.infoDelay
}

func (b *Bus) Record(kind MessageKind) {
	b.sent[kind]++
}

// Sent returns the number of messages recorded for one kind.
func (b *Bus) Sent(kind MessageKind) int64 {
	return b.sent[kind]
}

// TotalSent returns the number of messages recorded across all kinds.
func (b *Bus) TotalSent() int64 {
	var total int64
	for _, n := range b.sent {
		total += n
	}
	return total
}

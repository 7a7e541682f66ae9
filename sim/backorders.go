// Implements the BackorderQueue, which holds the unfilled remainders of
// downstream orders. Lines are enqueued when stock runs short and served
// in arrival order as replenishment lands.

package sim

import (
	"fmt"
	"strings"
)

// Backorder is the unfilled remainder of one downstream order, kept until
// on-hand stock covers it.
type Backorder struct {
	OrderID   string
	From      AgentID
	Product   string
	Remaining int64
	NeedBy    int64
}

// BackorderQueue is a FIFO of backorders waiting for stock. In the
// simulator it models the pool of committed downstream demand an agent
// still owes, served strictly in the order it arrived.
type BackorderQueue struct {
	lines []*Backorder
}

// Enqueue adds a backorder to the back of the queue.
func (q *BackorderQueue) Enqueue(b *Backorder) {
	if b == nil {
		panic("Enqueue: backorder must not be nil")
	}
	q.lines = append(q.lines, b)
}

// Len returns the number of open backorders.
func (q *BackorderQueue) Len() int {
	return len(q.lines)
}

// Units returns the total outstanding units across all lines.
func (q *BackorderQueue) Units() int64 {
	var total int64
	for _, line := range q.lines {
		total += line.Remaining
	}
	return total
}

// Peek returns the backorder at the front of the queue without removing
// it. Returns nil if the queue is empty.
func (q *BackorderQueue) Peek() *Backorder {
	if len(q.lines) == 0 {
		return nil
	}
	return q.lines[0]
}

func (q *BackorderQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, line := range q.lines {
		sb.WriteString(fmt.Sprintf("%s:%s:%d", line.OrderID, line.Product, line.Remaining))
		if i < len(q.lines)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Fill walks the queue in arrival order. For each line, fill returns how
// many units it covered; the line's remaining count drops by that much,
// and lines that reach zero leave the queue. fill MUST NOT return more
// than the line's remaining units.
func (q *BackorderQueue) Fill(fill func(line *Backorder) int64) {
	if fill == nil {
		panic("Fill: fn must not be nil")
	}
	keep := q.lines[:0]
	for _, line := range q.lines {
		n := fill(line)
		if n < 0 || n > line.Remaining {
			panic(fmt.Sprintf("Fill: fn filled %d of a %d-unit line", n, line.Remaining))
		}
		line.Remaining -= n
		if line.Remaining > 0 {
			keep = append(keep, line)
		}
	}
	// Clear the tail so dropped lines do not pin memory.
	for i := len(keep); i < len(q.lines); i++ {
		q.lines[i] = nil
	}
	q.lines = keep
}

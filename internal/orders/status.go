package orders

// Status codes follow the storefront's historical integer enum.
type Status int

const (
	StatusUnpaid    Status = 1
	StatusToShip    Status = 2
	StatusInTransit Status = 3
	StatusPaid      Status = 4 // paid, awaiting review
	StatusCompleted Status = 5
)

var validNext = map[Status]map[Status]bool{
	StatusUnpaid:    {StatusPaid: true},
	StatusToShip:    {StatusInTransit: true},
	StatusInTransit: {StatusPaid: true},
	StatusPaid:      {StatusCompleted: true},
	StatusCompleted: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) String() string {
	switch s {
	case StatusUnpaid:
		return "UNPAID"
	case StatusToShip:
		return "TO_SHIP"
	case StatusInTransit:
		return "IN_TRANSIT"
	case StatusPaid:
		return "PAID"
	case StatusCompleted:
		return "COMPLETED"
	}
	return "UNKNOWN"
}

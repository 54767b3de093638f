package quotations

// Valid reports whether s is one of the five defined lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// transitions is the only legal forward movement through the lifecycle.
// Accepting or rejecting straight from sent is allowed: a customer may act
// before the viewed tracking fires.
var transitions = map[Status][]Status{
	StatusDraft:  {StatusSent},
	StatusSent:   {StatusViewed, StatusAccepted, StatusRejected},
	StatusViewed: {StatusAccepted, StatusRejected},
}

// CanTransition reports whether moving from one status to another is legal.
// Every code path that changes a quotation's status, including the generic
// staff update, must consult this table; terminal states never move again.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

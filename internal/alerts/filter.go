package alerts

import (
	"lactacare/internal/domain"
)

// Mode selects which alerts a listing returns
type Mode int

const (
	ModeAll Mode = iota
	ModeUnread
	ModeByKind
)

// Filter is one of All, UnreadOnly or ByKind(kind)
type Filter struct {
	Mode Mode
	Kind domain.AlertKind
}

func All() Filter        { return Filter{Mode: ModeAll} }
func UnreadOnly() Filter { return Filter{Mode: ModeUnread} }

func ByKind(kind domain.AlertKind) Filter {
	return Filter{Mode: ModeByKind, Kind: kind}
}

// ParseFilter builds a filter from query parameters ("all", "unread", "kind")
func ParseFilter(mode, kind string) (Filter, error) {
	switch mode {
	case "", "all":
		if kind != "" {
			k, err := domain.ParseAlertKind(kind)
			if err != nil {
				return Filter{}, err
			}
			return ByKind(k), nil
		}
		return All(), nil
	case "unread":
		return UnreadOnly(), nil
	case "kind":
		k, err := domain.ParseAlertKind(kind)
		if err != nil {
			return Filter{}, err
		}
		return ByKind(k), nil
	default:
		return Filter{}, domain.NewInvalidInput("unknown alert filter %q", mode)
	}
}

// Matches reports whether the record passes the filter
func (f Filter) Matches(a domain.AlertRecord) bool {
	switch f.Mode {
	case ModeUnread:
		return !a.Read
	case ModeByKind:
		return a.Kind == f.Kind
	default:
		return true
	}
}

// Key identifies the filter in caches
func (f Filter) Key() string {
	switch f.Mode {
	case ModeUnread:
		return "unread"
	case ModeByKind:
		return "kind:" + string(f.Kind)
	default:
		return "all"
	}
}

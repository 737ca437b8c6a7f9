package logging

import (
	"fmt"
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

// NodeID logs a node by its display name.
func NodeID(id int) Field {
	return String("node", fmt.Sprintf("X%d", id))
}

// Link logs a link as "X<source>->X<target>".
func Link(source, target int) Field {
	return String("link", fmt.Sprintf("X%d->X%d", source, target))
}

func Command(name string) Field {
	return String("command", name)
}

func Session(id string) Field {
	return String("session", id)
}

func Revision(rev uint64) Field {
	return Field{Key: "revision", Value: rev}
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

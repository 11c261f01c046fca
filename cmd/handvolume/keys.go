package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/ayusman/handvolume/internal/app"
	"github.com/mattn/go-tty"
	"github.com/pkg/errors"
)

type kmt = map[rune]struct {
	cb   func(context.Context)
	desc string
}

func newKeyMap(ctrl *app.Controller, quit context.CancelFunc) kmt {
	var keyMap kmt
	keyMap = kmt{
		's': {
			cb: func(ctx context.Context) {
				if ctrl.Running() {
					ctrl.Stop()
					return
				}
				if err := ctrl.Start(ctx); err != nil {
					log.WithError(err).Error("Start failed")
				}
			},
			desc: "Start or stop gesture control",
		},
		'f': {
			cb: func(context.Context) {
				st := ctrl.State()
				fmt.Printf("running=%t session=%s debounce=%s cooldown=%d muted=%t frames=%d status=%q\n",
					st.Running, st.SessionID, st.Debounce, st.Cooldown, st.Muted, st.Frames, st.Status)
			},
			desc: "Get current state",
		},
		'q': {
			cb:   func(context.Context) { quit() },
			desc: "Quit",
		},
		'?': {
			desc: "Help",
			cb: func(context.Context) {
				for _, k := range slices.Sorted(maps.Keys(keyMap)) {
					fmt.Printf("%s\t%s\n", string(k), keyMap[k].desc)
				}
			},
		},
	}
	return keyMap
}

// scanKeys dispatches key presses until ctx is done.
func scanKeys(ctx context.Context, keyMap kmt) error {
	t, err := tty.Open()
	if err != nil {
		return errors.Wrap(err, "tty.Open")
	}
	defer t.Close()

	runes := make(chan rune)
	errc := make(chan error, 1)
	go func() {
		for {
			r, err := t.ReadRune()
			if err != nil {
				errc <- err
				return
			}
			select {
			case runes <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return errors.Wrap(err, "read key")
		case r := <-runes:
			if h, ok := keyMap[r]; ok {
				h.cb(ctx)
			}
		}
	}
}

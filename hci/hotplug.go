package hci

import (
	"context"
	"fmt"

	"github.com/pilebones/go-udev/netlink"
	"github.com/rs/zerolog/log"
)

// WatchAdapters logs controllers appearing and disappearing until ctx is
// done. A netlink socket that cannot be opened only disables the watcher.
func WatchAdapters(ctx context.Context) error {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		log.Warn().Err(err).Msg("hci: cannot open netlink socket, adapter hotplug will not be logged")
		return nil
	}
	defer conn.Close()

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	quit := conn.Monitor(queue, errs, adapterMatcher())

	log.Debug().Msg("hci: watching for adapter hotplug events")

	for {
		select {
		case <-ctx.Done():
			close(quit)
			return nil
		case uevent := <-queue:
			logAdapterEvent(uevent)
		case err := <-errs:
			log.Warn().Err(err).Msg("hci: netlink monitor error")
		}
	}
}

func adapterMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "bluetooth",
			"DEVTYPE":   "host",
		},
	})

	return rules
}

func logAdapterEvent(uevent netlink.UEvent) {
	l := log.Info().
		Str("Action", fmt.Sprint(uevent.Action)).
		Str("KObj", uevent.KObj)

	switch uevent.Action {
	case netlink.ADD:
		l.Msg("bluetooth adapter added")
	case netlink.REMOVE:
		l.Msg("bluetooth adapter removed, scans fail until it is back")
	default:
		l.Msg("bluetooth adapter changed")
	}
}

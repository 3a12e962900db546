// Package inventory indexes the statically configured device list so tool
// calls addressed to a known device id or host inherit its port, username
// and jump-host assignment.
package inventory

import (
	"github.com/nextlevelbuilder/aosgate/internal/config"
	"github.com/nextlevelbuilder/aosgate/internal/sshx"
	"github.com/nextlevelbuilder/aosgate/internal/zonecreds"
)

// Index maps device ids and hosts onto ready-to-dial device values.
type Index struct {
	byKey map[string]sshx.Device
}

// Build constructs the index from configuration, applying device defaults
// for port, username and jump host.
func Build(cfg config.InventoryConfig) *Index {
	idx := &Index{byKey: make(map[string]sshx.Device)}

	defaults := cfg.DeviceDefaults
	for _, d := range cfg.Devices {
		dev := sshx.Device{
			ID:       d.ID,
			Host:     d.Host,
			Port:     d.Port,
			Username: d.Username,
			Jump:     d.Jump,
		}
		if d.Auth != nil {
			if cred, ok := zonecreds.FromConfig(*d.Auth); ok {
				dev.Credential = &cred
			}
		}
		if defaults != nil {
			if dev.Port == 0 {
				dev.Port = defaults.Port
			}
			if dev.Username == "" {
				dev.Username = defaults.Username
			}
			if dev.Jump == "" {
				dev.Jump = defaults.Jump
			}
			if dev.Credential == nil && defaults.Auth != nil {
				if cred, ok := zonecreds.FromConfig(*defaults.Auth); ok {
					dev.Credential = &cred
				}
			}
		}
		if dev.Port == 0 {
			dev.Port = 22
		}

		idx.byKey[d.ID] = dev
		if d.Host != d.ID {
			idx.byKey[d.Host] = dev
		}
	}

	return idx
}

// Lookup resolves a device id or host to its configured device.
func (idx *Index) Lookup(key string) (sshx.Device, bool) {
	dev, ok := idx.byKey[key]
	return dev, ok
}

// Devices returns all indexed device ids.
func (idx *Index) Devices() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, dev := range idx.byKey {
		if _, ok := seen[dev.ID]; ok {
			continue
		}
		seen[dev.ID] = struct{}{}
		ids = append(ids, dev.ID)
	}
	return ids
}

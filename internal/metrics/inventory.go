package metrics

import (
	"context"
	"fmt"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Inventory lists the network interfaces currently present on the host.
type Inventory interface {
	InterfaceNames(ctx context.Context) ([]string, error)
}

type HostInventory struct{}

func NewHostInventory() *HostInventory {
	return &HostInventory{}
}

func (HostInventory) InterfaceNames(ctx context.Context) ([]string, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	names := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		names = append(names, i.Name)
	}
	return names, nil
}

// HasInterface reports whether name is in the inventory.
func HasInterface(ctx context.Context, inv Inventory, name string) (bool, error) {
	names, err := inv.InterfaceNames(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterxing/exo/internal/model"
	"github.com/peterxing/exo/internal/telemetry"
)

// Identity answers the host naming questions carried on node profiles.
type Identity interface {
	ModelAndChip(ctx context.Context) (modelID, chipID string, err error)
	FriendlyName(ctx context.Context) (string, error)
}

type NetworkLister interface {
	NetworkInterfaces(ctx context.Context) ([]model.NetworkInterfaceInfo, error)
}

// errSourceExhausted reports that the metrics source has no more samples.
var errSourceExhausted = errors.New("metrics source exhausted")

// NodeCollector assembles one NodePerformanceProfile per call.
type NodeCollector struct {
	source   telemetry.Source
	network  NetworkLister
	identity Identity
	memory   *MemoryCollector
}

func NewNodeCollector(source telemetry.Source, network NetworkLister, identity Identity, memory *MemoryCollector) *NodeCollector {
	return &NodeCollector{source: source, network: network, identity: identity, memory: memory}
}

// Collect samples hardware first and memory last so the memory figures are
// the freshest part of the profile.
func (c *NodeCollector) Collect(ctx context.Context) (model.NodePerformanceProfile, error) {
	metrics, err := c.source.Sample(ctx)
	if err != nil {
		return model.NodePerformanceProfile{}, err
	}
	if metrics == nil {
		return model.NodePerformanceProfile{}, errSourceExhausted
	}

	ifaces, err := c.network.NetworkInterfaces(ctx)
	if err != nil {
		return model.NodePerformanceProfile{}, fmt.Errorf("network interfaces: %w", err)
	}
	modelID, chipID, err := c.identity.ModelAndChip(ctx)
	if err != nil {
		return model.NodePerformanceProfile{}, fmt.Errorf("model and chip: %w", err)
	}
	friendly, err := c.identity.FriendlyName(ctx)
	if err != nil {
		return model.NodePerformanceProfile{}, fmt.Errorf("friendly name: %w", err)
	}
	mem, err := c.memory.Collect(ctx)
	if err != nil {
		return model.NodePerformanceProfile{}, err
	}

	return model.NodePerformanceProfile{
		ModelID:           modelID,
		ChipID:            chipID,
		FriendlyName:      friendly,
		NetworkInterfaces: ifaces,
		Memory:            mem,
		System:            model.SystemProfileFromMetrics(*metrics),
	}, nil
}

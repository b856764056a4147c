// Package config assembles kernels, replica pairs and verified stores
// from a YAML description.
//
// This provides config-driven runtime selection of hash algorithms and
// store backends. Hashers are opened by name via registry; callers
// extending the algorithm set register their hashers before Load.
//
// Example:
//
//	primary:
//	  hasher: sha2-256
//	  store: mem
//	secondary:
//	  hasher: blake3
//	  store: checked
//	policy: strict
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/kernel"
	"xdao.co/dualcas/registry"
	"xdao.co/dualcas/replica"
	"xdao.co/dualcas/storage"
	"xdao.co/dualcas/storage/checked"
	"xdao.co/dualcas/storage/memstore"
	"xdao.co/dualcas/symmetry"
)

// Config describes a two-replica deployment.
type Config struct {
	Primary   ReplicaConfig `yaml:"primary"`
	Secondary ReplicaConfig `yaml:"secondary"`
	// Policy selects the verification policy ("strict", "lenient",
	// "primary-authoritative"). Empty means strict.
	Policy string `yaml:"policy,omitempty"`
}

// ReplicaConfig describes one replica's hasher and store backend.
type ReplicaConfig struct {
	// Hasher is the registry name of the hash algorithm (e.g.
	// "sha2-256", "blake3"). Empty means "sha2-256".
	Hasher string `yaml:"hasher,omitempty"`
	// Store selects the backend: "mem" (default) or "checked".
	Store string `yaml:"store,omitempty"`
	// CheckedHasher overrides the digest algorithm a "checked" store
	// rekeys under. Empty means the replica's Hasher.
	CheckedHasher string `yaml:"checked_hasher,omitempty"`
}

// LoadFile reads and validates a Config from a YAML file.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

// Parse decodes and validates a Config from YAML bytes.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first problem with the config, if any.
func (c Config) Validate() error {
	if err := c.Primary.validate("primary"); err != nil {
		return err
	}
	if err := c.Secondary.validate("secondary"); err != nil {
		return err
	}
	if _, err := storage.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (r ReplicaConfig) validate(role string) error {
	if r.Hasher != "" {
		if _, err := registry.Open(r.Hasher); err != nil {
			return fmt.Errorf("config: %s: %w", role, err)
		}
	}
	switch r.Store {
	case "", "mem", "checked":
	default:
		return fmt.Errorf("config: %s: unknown store backend %q", role, r.Store)
	}
	if r.CheckedHasher != "" {
		if r.Store != "checked" {
			return fmt.Errorf("config: %s: checked_hasher requires store \"checked\"", role)
		}
		if _, err := registry.Open(r.CheckedHasher); err != nil {
			return fmt.Errorf("config: %s: %w", role, err)
		}
	}
	return nil
}

// NewHasher opens the replica's hash algorithm.
func (r ReplicaConfig) NewHasher() (digest.Hasher, error) {
	name := r.Hasher
	if name == "" {
		name = "sha2-256"
	}
	return registry.Open(name)
}

// NewStore builds the replica's store backend.
func (r ReplicaConfig) NewStore() (storage.Store, error) {
	switch r.Store {
	case "", "mem":
		return memstore.New(), nil
	case "checked":
		name := r.CheckedHasher
		if name == "" {
			name = r.Hasher
		}
		if name == "" {
			name = "sha2-256"
		}
		h, err := registry.Open(name)
		if err != nil {
			return nil, err
		}
		return checked.New(h), nil
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", r.Store)
	}
}

// NewKernel builds a kernel for one replica.
func (r ReplicaConfig) NewKernel() (*kernel.Kernel, error) {
	h, err := r.NewHasher()
	if err != nil {
		return nil, err
	}
	s, err := r.NewStore()
	if err != nil {
		return nil, err
	}
	return kernel.New(h, s), nil
}

// NewReplicaPair builds an alternating-phase replica pair from the
// primary and secondary sections.
func (c Config) NewReplicaPair() (*replica.Pair, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	primary, err := c.Primary.NewKernel()
	if err != nil {
		return nil, err
	}
	dual, err := c.Secondary.NewKernel()
	if err != nil {
		return nil, err
	}
	return replica.NewWithKernels(primary, dual), nil
}

// NewVerifiedStore builds a verified replicated store over the two
// replicas' backends, honoring Policy.
func (c Config) NewVerifiedStore() (*storage.VerifiedReplicatedStore, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	primary, err := c.Primary.NewStore()
	if err != nil {
		return nil, err
	}
	secondary, err := c.Secondary.NewStore()
	if err != nil {
		return nil, err
	}
	policy, err := storage.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}
	return storage.NewVerified(primary, secondary, policy)
}

// NewScheduler builds a phase-routed scheduler over the two replicas.
func (c Config) NewScheduler() (*symmetry.Scheduler, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	primary, err := c.Primary.NewKernel()
	if err != nil {
		return nil, err
	}
	dual, err := c.Secondary.NewKernel()
	if err != nil {
		return nil, err
	}
	return symmetry.NewWithKernels(primary, dual), nil
}

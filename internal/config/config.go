// Package config implements the discovery daemon's configuration loader
// (C9): command-line flags layered over an optional YAML file, producing
// a validated pdp.DiscoveryAttributes. Grounded on the teacher's
// cli/flag (pflag.FlagSet) for flag parsing and pkg/flags (the
// flag-then-log-the-effective-value idiom used for controller-namespace
// and trust-domain defaults in controller/cmd/destination/main.go).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/pdp"
)

// fileConfig mirrors the subset of DiscoveryAttributes that may come from
// an optional YAML overlay file; flags always take precedence over the
// file, and the file takes precedence over the built-in defaults.
type fileConfig struct {
	ParticipantName       string   `yaml:"participantName"`
	InitialPeers          []string `yaml:"initialPeers"`
	LeaseDuration         string   `yaml:"leaseDuration"`
	ResendInterval        string   `yaml:"resendInterval"`
	UseStaticEDP          bool     `yaml:"useStaticEdp"`
	StaticEDPXMLPath      string   `yaml:"staticEdpXmlPath"`
	UsePubWriterSubReader *bool    `yaml:"usePubWriterSubReader"`
	UsePubReaderSubWriter *bool    `yaml:"usePubReaderSubWriter"`
}

// Options holds the raw flag destinations; BindFlags registers them on a
// flag set, the caller parses it, and Resolve produces the final
// DiscoveryAttributes.
type Options struct {
	DomainID        uint32
	ParticipantID   uint32
	ParticipantName string
	ConfigFile      string
	InitialPeers    []string
	LeaseDuration   time.Duration
	ResendInterval  time.Duration
	UseStaticEDP    bool
	StaticEDPXML    string
	AdminAddr       string
	RTPSAddr        string
}

// BindFlags registers every discovery flag on fs, in the same
// flag-per-option style as the teacher's cli/flag.FlagSet usage.
func BindFlags(fs *pflag.FlagSet) *Options {
	o := &Options{}
	fs.Uint32Var(&o.DomainID, "domain-id", 0, "RTPS domain id")
	fs.Uint32Var(&o.ParticipantID, "participant-id", 0, "RTPS participant id, used in the unicast port formula")
	fs.StringVar(&o.ParticipantName, "participant-name", "", "local participant name")
	fs.StringVar(&o.ConfigFile, "config", "", "path to an optional YAML config overlay")
	fs.StringSliceVar(&o.InitialPeers, "initial-peer", nil, "host:port of a seed peer's metatraffic unicast locator; repeatable")
	// A zero default lets Resolve tell "flag not given" apart from "file
	// or built-in default applies"; pflag has no bare way to ask whether a
	// duration flag was explicitly set without holding onto the FlagSet.
	fs.DurationVar(&o.LeaseDuration, "lease-duration", 0, "remote participant lease duration (defaults to 10s, or the config file's value)")
	fs.DurationVar(&o.ResendInterval, "resend-interval", 0, "local participant announcement interval (defaults to 2s, or the config file's value)")
	fs.BoolVar(&o.UseStaticEDP, "static-edp", false, "use the Static EDP instead of the Dynamic EDP")
	fs.StringVar(&o.StaticEDPXML, "static-edp-xml", "", "path to the Static EDP discovery XML file")
	fs.StringVar(&o.AdminAddr, "admin-addr", ":9980", "address for the admin/metrics server")
	fs.StringVar(&o.RTPSAddr, "rtps-addr", "", "local interface address advertised in metatraffic locators (defaults to loopback)")
	return o
}

// Resolve merges o with an optional YAML overlay named by o.ConfigFile and
// the package defaults, returning a validated DiscoveryAttributes.
// Flag-set values always win over the file; the file wins over defaults.
func (o *Options) Resolve() (pdp.DiscoveryAttributes, error) {
	attrs := pdp.DefaultDiscoveryAttributes()

	if o.ConfigFile != "" {
		fc, err := loadFileConfig(o.ConfigFile)
		if err != nil {
			return pdp.DiscoveryAttributes{}, err
		}
		applyFileConfig(&attrs, fc)
	}

	attrs.DomainID = o.DomainID
	attrs.ParticipantID = o.ParticipantID
	if o.ParticipantName != "" {
		attrs.ParticipantName = o.ParticipantName
	}
	if o.LeaseDuration > 0 {
		attrs.LeaseDuration = o.LeaseDuration
	}
	if o.ResendInterval > 0 {
		attrs.ResendInterval = o.ResendInterval
	}
	attrs.UseStaticEDP = o.UseStaticEDP || attrs.UseStaticEDP
	if o.StaticEDPXML != "" {
		attrs.StaticEDPXMLPath = o.StaticEDPXML
	}
	if o.RTPSAddr != "" {
		ip := net.ParseIP(o.RTPSAddr)
		if ip == nil {
			return pdp.DiscoveryAttributes{}, fmt.Errorf("config: invalid --rtps-addr %q", o.RTPSAddr)
		}
		attrs.LocalAddress = ip
	}

	peers, err := parsePeers(o.InitialPeers)
	if err != nil {
		return pdp.DiscoveryAttributes{}, err
	}
	if len(peers) > 0 {
		attrs.InitialPeers = peers
	}

	if err := attrs.Validate(); err != nil {
		return pdp.DiscoveryAttributes{}, err
	}
	return attrs, nil
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &fc, nil
}

func applyFileConfig(attrs *pdp.DiscoveryAttributes, fc *fileConfig) {
	if fc.ParticipantName != "" {
		attrs.ParticipantName = fc.ParticipantName
	}
	if fc.LeaseDuration != "" {
		if d, err := time.ParseDuration(fc.LeaseDuration); err == nil {
			attrs.LeaseDuration = d
		} else {
			log.WithError(err).Warn("ignoring invalid leaseDuration in config file")
		}
	}
	if fc.ResendInterval != "" {
		if d, err := time.ParseDuration(fc.ResendInterval); err == nil {
			attrs.ResendInterval = d
		} else {
			log.WithError(err).Warn("ignoring invalid resendInterval in config file")
		}
	}
	attrs.UseStaticEDP = fc.UseStaticEDP
	if fc.StaticEDPXMLPath != "" {
		attrs.StaticEDPXMLPath = fc.StaticEDPXMLPath
	}
	if fc.UsePubWriterSubReader != nil {
		attrs.UsePubWriterSubReader = *fc.UsePubWriterSubReader
	}
	if fc.UsePubReaderSubWriter != nil {
		attrs.UsePubReaderSubWriter = *fc.UsePubReaderSubWriter
	}
	if peers, err := parsePeers(fc.InitialPeers); err == nil {
		attrs.InitialPeers = peers
	} else {
		log.WithError(err).Warn("ignoring invalid initialPeers in config file")
	}
}

func parsePeers(raw []string) ([]locator.Locator, error) {
	var errs *multierror.Error
	var out []locator.Locator
	for _, hostport := range raw {
		host, portStr, err := net.SplitHostPort(hostport)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("config: invalid peer %q: %w", hostport, err))
			continue
		}
		ip := net.ParseIP(host)
		if ip == nil {
			errs = multierror.Append(errs, fmt.Errorf("config: invalid peer address %q", host))
			continue
		}
		var port uint32
		if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("config: invalid peer port %q", portStr))
			continue
		}
		out = append(out, locator.FromUDPv4(ip, port))
	}
	return out, errs.ErrorOrNil()
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/predictinteractive/predict-server/openrtb_ext"
	"gopkg.in/yaml.v3"
)

// BidderInfos contains a mapping of bidder name to bidder info.
type BidderInfos map[string]BidderInfo

// BidderInfo specifies all configuration for a bidder.
type BidderInfo struct {
	Disabled         bool   `yaml:"disabled" json:"-"`
	Endpoint         string `yaml:"endpoint" json:"-"`
	ExtraAdapterInfo string `yaml:"extra_info" json:"-"`

	Maintainer   *MaintainerInfo   `yaml:"maintainer" json:"maintainer"`
	Capabilities *CapabilitiesInfo `yaml:"capabilities" json:"capabilities"`
}

// MaintainerInfo specifies the support email address for a bidder.
type MaintainerInfo struct {
	Email string `yaml:"email" json:"email"`
}

// CapabilitiesInfo specifies the supported platforms for a bidder.
type CapabilitiesInfo struct {
	App  *PlatformInfo `yaml:"app" json:"app,omitempty"`
	Site *PlatformInfo `yaml:"site" json:"site,omitempty"`
}

// PlatformInfo specifies the supported media types for a bidder.
type PlatformInfo struct {
	MediaTypes []openrtb_ext.BidType `yaml:"mediaTypes" json:"mediaTypes"`
}

// IsEnabled returns true if the bidder is enabled by the host.
func (info BidderInfo) IsEnabled() bool {
	return !info.Disabled
}

// AdapterConfig returns the Builder settings of the bidder.
func (info BidderInfo) AdapterConfig() Adapter {
	return Adapter{
		Endpoint:         info.Endpoint,
		ExtraAdapterInfo: info.ExtraAdapterInfo,
	}
}

// LoadBidderInfoFromDisk parses all static/bidder-info/{bidder}.yaml files from the file system.
func LoadBidderInfoFromDisk(path string) (BidderInfos, error) {
	return loadBidderInfo(infoReaderFromDisk{path: path}, openrtb_ext.CoreBidderNames())
}

func loadBidderInfo(r infoReader, bidders []openrtb_ext.BidderName) (BidderInfos, error) {
	infos := BidderInfos{}

	for _, bidder := range bidders {
		data, err := r.Read(string(bidder))
		if err != nil {
			return nil, err
		}

		info := BidderInfo{}
		if err := yaml.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("error parsing yaml for bidder %s: %v", bidder, err)
		}

		infos[string(bidder)] = info
	}

	return infos, nil
}

type infoReader interface {
	Read(bidder string) ([]byte, error)
}

type infoReaderFromDisk struct {
	path string
}

func (r infoReaderFromDisk) Read(bidder string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.path, bidder+".yaml"))
}

func applyBidderInfoOverrides(infos BidderInfos, overrides map[string]Adapter) BidderInfos {
	merged := make(BidderInfos, len(infos))
	for name, info := range infos {
		if override, ok := overrides[name]; ok {
			if override.Endpoint != "" {
				info.Endpoint = override.Endpoint
			}
			if override.ExtraAdapterInfo != "" {
				info.ExtraAdapterInfo = override.ExtraAdapterInfo
			}
			if override.Disabled != nil {
				info.Disabled = *override.Disabled
			}
		}
		merged[name] = info
	}
	return merged
}

func (infos BidderInfos) validate(errs []error) []error {
	for _, name := range infos.names() {
		info := infos[name]
		if !info.IsEnabled() {
			continue
		}
		errs = validateAdapterEndpoint(info.Endpoint, name, errs)
		errs = validateExtraAdapterInfo(info.ExtraAdapterInfo, name, errs)
		if info.Maintainer == nil || info.Maintainer.Email == "" {
			errs = append(errs, fmt.Errorf("missing required field: maintainer.email for adapter: %s", name))
		}
		if info.Capabilities == nil || (info.Capabilities.App == nil && info.Capabilities.Site == nil) {
			errs = append(errs, fmt.Errorf("at least one of capabilities.site or capabilities.app must exist for adapter: %s", name))
		}
	}
	return errs
}

func (infos BidderInfos) names() []string {
	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

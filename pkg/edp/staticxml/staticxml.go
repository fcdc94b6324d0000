// Package staticxml loads the Static EDP's XML endpoint declarations
// (§4.4.2, §6). No XML-handling library appears anywhere in the example
// corpus this module is grounded on, so this is one of the few places the
// standard library's encoding/xml is used directly rather than a
// third-party dependency — see DESIGN.md for the justification.
package staticxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// Document is the root <staticdiscovery> element.
type Document struct {
	XMLName      xml.Name      `xml:"staticdiscovery"`
	Participants []Participant `xml:"participant"`
}

// Participant is one <participant name="..."> element.
type Participant struct {
	Name      string     `xml:"name,attr"`
	Endpoints []Endpoint `xml:"endpoint"`
}

// Endpoint is one <endpoint> element.
type Endpoint struct {
	Type             string    `xml:"type,attr"`
	ID               uint16    `xml:"id"`
	TopicName        string    `xml:"topicName"`
	Topic            *Topic    `xml:"topic"`
	TopicDataType    string    `xml:"topicDataType"`
	TopicKind        string    `xml:"topicKind"`
	ReliabilityKind  string    `xml:"reliabilityKind"`
	ExpectsInlineQoS *bool     `xml:"expectsInlineQos"`
	UnicastLocators  []XMLLoc  `xml:"unicastLocator"`
	MulticastLocators []XMLLoc `xml:"multicastLocator"`
}

// Topic is the compact <topic name="..." dataType="..." kind="..."/> form.
type Topic struct {
	Name     string `xml:"name,attr"`
	DataType string `xml:"dataType,attr"`
	Kind     string `xml:"kind,attr"`
}

// XMLLoc is a <unicastLocator address="..." port="..."/> element.
type XMLLoc struct {
	Address string `xml:"address,attr"`
	Port    uint32 `xml:"port,attr"`
}

// ToLocator converts the XML attributes into a wire Locator.
func (l XMLLoc) ToLocator() (locator.Locator, error) {
	ip := net.ParseIP(l.Address)
	if ip == nil {
		return locator.Locator{}, fmt.Errorf("staticxml: invalid locator address %q", l.Address)
	}
	return locator.FromUDPv4(ip, l.Port), nil
}

// EffectiveTopicName returns topicName, falling back to the compact
// <topic> element's name attribute.
func (e Endpoint) EffectiveTopicName() string {
	if e.TopicName != "" {
		return e.TopicName
	}
	if e.Topic != nil {
		return e.Topic.Name
	}
	return ""
}

// EffectiveTypeName returns topicDataType, falling back to <topic
// dataType=...>.
func (e Endpoint) EffectiveTypeName() string {
	if e.TopicDataType != "" {
		return e.TopicDataType
	}
	if e.Topic != nil {
		return e.Topic.DataType
	}
	return ""
}

// EffectiveTopicKind returns topicKind, falling back to <topic kind=...>.
func (e Endpoint) EffectiveTopicKind() string {
	if e.TopicKind != "" {
		return e.TopicKind
	}
	if e.Topic != nil {
		return e.Topic.Kind
	}
	return ""
}

// ParseTopicKind maps the XML NO_KEY/WITH_KEY enumeration onto guid.TopicKind.
func ParseTopicKind(s string) (guid.TopicKind, error) {
	switch s {
	case "NO_KEY", "":
		return guid.NoKey, nil
	case "WITH_KEY":
		return guid.WithKey, nil
	default:
		return guid.NoKey, fmt.Errorf("staticxml: unknown topicKind %q", s)
	}
}

// Load reads and parses the static discovery XML file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &rtpserr.XMLParseError{Path: path, Cause: err}
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse decodes r as a static discovery document; path is carried only for
// the error message.
func Parse(path string, r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &rtpserr.XMLParseError{Path: path, Cause: err}
	}
	return &doc, nil
}

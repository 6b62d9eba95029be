// Package scanparse converts raw nmap XML artifacts into normalized port
// observations.
package scanparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

type nmapRun struct {
	Hosts []nmapHost `xml:"host"`
}

type nmapHost struct {
	Addresses []nmapAddress `xml:"address"`
	Ports     nmapPorts     `xml:"ports"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapPorts struct {
	Ports []nmapPort `xml:"port"`
}

type nmapPort struct {
	PortID   string      `xml:"portid,attr"`
	Protocol string      `xml:"protocol,attr"`
	State    nmapState   `xml:"state"`
	Service  nmapService `xml:"service"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name string `xml:"name,attr"`
}

// Parse reads one nmap XML document and returns its observations in
// document order, without deduplication. Hosts without a resolvable
// address and port entries with an unparseable portid are skipped; missing
// state or service attributes default to the empty string. A document that
// does not parse at all returns an error the caller can treat as
// recoverable (skip the artifact, continue the batch).
func Parse(r io.Reader) ([]domain.Observation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var run nmapRun
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse nmap xml: %w", err)
	}

	var out []domain.Observation
	for _, host := range run.Hosts {
		addr := hostAddr(host)
		if addr == "" {
			continue
		}
		for _, p := range host.Ports.Ports {
			port, err := strconv.Atoi(p.PortID)
			if err != nil {
				continue
			}
			out = append(out, domain.Observation{
				Host:    addr,
				Port:    port,
				Proto:   p.Protocol,
				State:   p.State.State,
				Service: p.Service.Name,
			})
		}
	}
	return out, nil
}

// ParseFile parses the artifact at path. The signature matches
// services.ParseFunc.
func ParseFile(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// hostAddr picks the host's address, preferring IPv4 and falling back to
// the first address present.
func hostAddr(h nmapHost) string {
	for _, a := range h.Addresses {
		if a.AddrType == "ipv4" && a.Addr != "" {
			return a.Addr
		}
	}
	for _, a := range h.Addresses {
		if a.Addr != "" {
			return a.Addr
		}
	}
	return ""
}

package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// DefaultNameserver is used when no nameserver is configured and
// /etc/resolv.conf cannot be read.
const DefaultNameserver = "8.8.8.8:53"

// Lookuper returns the IPv4 addresses of a name. A name without records
// yields an empty slice and no error.
type Lookuper interface {
	LookupA(ctx context.Context, name string) ([]string, error)
}

// DNSLookuper queries a single nameserver for A records.
type DNSLookuper struct {
	client     *dns.Client
	nameserver string
	logger     *zap.Logger
}

// NewDNSLookuper creates a lookuper. An empty nameserver selects the first
// server listed in /etc/resolv.conf, falling back to DefaultNameserver.
func NewDNSLookuper(nameserver string, timeout time.Duration, logger *zap.Logger) *DNSLookuper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nameserver == "" {
		nameserver = systemNameserver()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSLookuper{
		client:     &dns.Client{Net: "udp", Timeout: timeout},
		nameserver: nameserver,
		logger:     logger,
	}
}

func systemNameserver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return DefaultNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// Nameserver returns the server queries are sent to.
func (l *DNSLookuper) Nameserver() string {
	return l.nameserver
}

// LookupA sends one A query for name.
func (l *DNSLookuper) LookupA(ctx context.Context, name string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)
	msg.RecursionDesired = true

	resp, rtt, err := l.client.ExchangeContext(ctx, msg, l.nameserver)
	if err != nil {
		return nil, errors.NewResolutionError(name, err)
	}

	l.logger.Debug("DNS answer",
		zap.String("name", name),
		zap.String("rcode", dns.RcodeToString[resp.Rcode]),
		zap.Int("answers", len(resp.Answer)),
		zap.Duration("rtt", rtt))

	switch resp.Rcode {
	case dns.RcodeSuccess, dns.RcodeNameError:
	default:
		return nil, errors.NewResolutionError(name,
			fmt.Errorf("nameserver %s answered %s", l.nameserver, dns.RcodeToString[resp.Rcode]))
	}

	return addressesFrom(resp.Answer), nil
}

func addressesFrom(rrs []dns.RR) []string {
	var out []string
	for _, rr := range rrs {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A.String())
		}
	}
	return out
}

package app

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Proxy est une entrée de rotation sortante, au format host:port[:user:pass].
type Proxy struct {
	Host string
	Port string
	User string
	Pass string
}

func ParseProxy(entry string) (Proxy, error) {
	parts := strings.Split(strings.TrimSpace(entry), ":")
	switch len(parts) {
	case 2:
		// ok
	case 4:
		// ok, avec credentials
	default:
		return Proxy{}, fmt.Errorf("invalid proxy entry %q", entry)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Proxy{}, fmt.Errorf("invalid proxy entry %q", entry)
		}
	}
	p := Proxy{Host: parts[0], Port: parts[1]}
	if len(parts) == 4 {
		p.User = parts[2]
		p.Pass = parts[3]
	}
	return p, nil
}

func (p Proxy) key() string {
	return p.Host + ":" + p.Port
}

// URL rend l'URL http://[user:pass@]host:port utilisable par http.Transport.
func (p Proxy) URL() *url.URL {
	u := &url.URL{Scheme: "http", Host: p.Host + ":" + p.Port}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Pass)
	}
	return u
}

// ProxyPool fait tourner les proxys configurés en round-robin. Un proxy marqué
// en échec est mis en quarantaine jusqu'à ce que tous le soient; la quarantaine
// est alors vidée (retry optimiste depuis le premier proxy).
type ProxyPool struct {
	mu          sync.Mutex
	proxies     []Proxy
	cursor      int
	quarantined map[string]struct{}
}

// NewProxyPool ignore les entrées malformées avec un warning: un proxy
// invalide dégrade en "pas de proxy pour cette tentative", jamais en abort.
func NewProxyPool(logger zerolog.Logger, entries []string) *ProxyPool {
	pool := &ProxyPool{quarantined: map[string]struct{}{}}
	for _, entry := range entries {
		p, err := ParseProxy(entry)
		if err != nil {
			logger.Warn().Str("entry", entry).Msg("malformed proxy entry dropped")
			continue
		}
		pool.proxies = append(pool.proxies, p)
	}
	return pool
}

// Next renvoie le prochain proxy hors quarantaine, ou nil si aucun proxy n'est
// configuré (fetch direct). Si tous sont en quarantaine, la vide et renvoie le
// premier proxy.
func (pp *ProxyPool) Next() *Proxy {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if len(pp.proxies) == 0 {
		return nil
	}
	for i := 0; i < len(pp.proxies); i++ {
		p := pp.proxies[pp.cursor%len(pp.proxies)]
		pp.cursor++
		if _, bad := pp.quarantined[p.key()]; !bad {
			return &p
		}
	}

	// Tous en quarantaine: reset complet.
	pp.quarantined = map[string]struct{}{}
	pp.cursor = 1
	p := pp.proxies[0]
	return &p
}

func (pp *ProxyPool) MarkFailed(p *Proxy) {
	if p == nil {
		return
	}
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.quarantined[p.key()] = struct{}{}
}

func (pp *ProxyPool) Size() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return len(pp.proxies)
}

func (pp *ProxyPool) Quarantined() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return len(pp.quarantined)
}

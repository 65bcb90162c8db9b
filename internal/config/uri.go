package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// URLValue returns the redis connection URL. An explicit url wins over the host parts.
func (c RedisRuntimeConfig) URLValue() string {
	if c.URL != "" {
		return withScheme(c.URL, "redis", "redis://", "rediss://")
	}
	scheme := "redis"
	if c.Scheme == "rediss" || (c.Scheme == "" && c.TLS) {
		scheme = "rediss"
	}
	db := "/" + strconv.Itoa(max(c.DB, 0))
	return connURL(scheme, orDefault(c.Host, defaultRedisHost), orDefaultInt(c.Port, defaultRedisPort), db, c.Username, c.Password, c.Params)
}

// URIValue returns the mongo connection string, composing one from host parts when no URI is set.
func (c MongoRuntimeConfig) URIValue() string {
	if c.URI != "" {
		return withScheme(c.URI, "mongodb", "mongodb://", "mongodb+srv://")
	}
	params := copyStringMap(c.Params)
	if c.AuthSource != "" {
		if params == nil {
			params = map[string]string{}
		}
		params["authSource"] = c.AuthSource
	}
	password := ""
	if c.User != "" {
		password = c.Password
	}
	return connURL("mongodb", orDefault(c.Host, defaultMongoHost), orDefaultInt(c.Port, defaultMongoPort), "/", c.User, password, params)
}

// connURL assembles scheme://[user[:password]@]host:port/path?params.
func connURL(scheme, host string, port int, path, user, password string, params map[string]string) string {
	u := &neturl.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: path}
	switch {
	case password != "":
		u.User = neturl.UserPassword(user, password)
	case user != "":
		u.User = neturl.User(user)
	}
	if len(params) > 0 {
		query := neturl.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// withScheme prefixes raw with scheme:// unless it already starts with an accepted prefix.
func withScheme(raw, scheme string, accepted ...string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, prefix := range accepted {
		if strings.HasPrefix(raw, prefix) {
			return raw
		}
	}
	return scheme + "://" + raw
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func orDefaultInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

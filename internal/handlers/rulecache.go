package handlers

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/rules"
)

// ruleCacheSize bounds the number of distinct rule texts kept parsed
const ruleCacheSize = 256

// ruleCache keeps validated rule sets keyed by default category and rule
// text. Rule sets are immutable, so cached values are shared between requests.
type ruleCache struct {
	cache *lru.Cache[string, *rules.RuleSet]
}

func newRuleCache(size int) *ruleCache {
	cache, err := lru.New[string, *rules.RuleSet](size)
	if err != nil {
		// Non-positive size: parse every request
		return &ruleCache{}
	}
	return &ruleCache{cache: cache}
}

// ruleSet parses and validates text, reusing an earlier result when possible.
// Invalid rule texts are never cached.
func (c *ruleCache) ruleSet(text, variable string) (*rules.RuleSet, error) {
	key := variable + "\x00" + text
	if c.cache != nil {
		if rs, ok := c.cache.Get(key); ok {
			return rs, nil
		}
	}

	rs := rules.Parse(text, variable)
	if err := classifier.Validate(rs); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(key, rs)
	}
	return rs, nil
}

func (c *ruleCache) len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

package domain

import "sync"

// PayerDataCache memoizes payer data lookups for the duration of one pool
// run. It is owned by the campaign runner and threaded as a parameter into
// every sub-call; there is no process-wide cache.
type PayerDataCache struct {
	mu   sync.Mutex
	data map[string]PayerData
}

// NewPayerDataCache returns an empty cache.
func NewPayerDataCache() *PayerDataCache {
	return &PayerDataCache{data: make(map[string]PayerData)}
}

// GetOrResolve returns the cached payer data for payerExternalID, calling
// resolve on a miss and caching the result. Resolution failures are not
// cached. The mutex is held across resolve, serializing lookups for the
// same cache.
func (c *PayerDataCache) GetOrResolve(payerExternalID string, resolve func() (PayerData, error)) (PayerData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.data[payerExternalID]; ok {
		return data, nil
	}
	data, err := resolve()
	if err != nil {
		return PayerData{}, err
	}
	c.data[payerExternalID] = data
	return data, nil
}

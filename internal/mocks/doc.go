// Package mocks provides centralized mock implementations for testing.
//
// Each mock has an optional function field per interface method; when the
// field is nil the mock returns its default values. Every call is recorded
// under a mutex so tests can assert on call counts and arguments, including
// from concurrent pipelines.
//
// Usage:
//
//	gen := &mocks.MockContentGenerator{
//	    FilterContentSafetyFn: func(ctx context.Context, content string) (bool, error) {
//	        return false, nil
//	    },
//	}
//	// ... run the code under test ...
//	assert.Equal(t, 0, gen.CallCount(mocks.MethodCategorizeContent))
package mocks

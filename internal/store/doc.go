// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// NewsEventStore is the repository for pipeline output; MonthlyBookStore
// holds assembled books. Implementations live under internal/platform.
package store

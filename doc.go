// Package main provides the entry point for the zhongyue-admin back-office service.
// It starts a JSON API built on Fiber that manages customers, contracts, expense
// records, users, departments and roles. Every list endpoint is filtered by the
// caller's role based data scopes, and every mutation is guarded by the caller's
// action permissions. Persistence is handled by gorm.
package main

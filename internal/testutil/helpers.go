// Package testutil holds helpers shared by package tests.
package testutil

// Ptr returns a pointer to v, for optional config fields in struct literals:
//
//	config.Binding{Hotkey: "super+q", Action: testutil.Ptr(int32(3))}
func Ptr[T any](v T) *T { return &v }

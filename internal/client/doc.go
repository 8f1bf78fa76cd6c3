// Package client assembles the smart screen voice client from its
// capability components and is the single entry point a host uses to
// connect, trigger interactions and shut down.
//
// Build validates every required input before constructing anything, then
// creates the components in dependency order. Observer registrations
// between components are recorded in a wiring table and applied once every
// component exists; Close undoes them edge by edge during teardown.
package client

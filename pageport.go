// Package pageport exports captured web pages into installable page-builder
// artifacts. It builds a Section/Column/Widget document model from a page
// snapshot or native block data, strips foreign platform dependencies,
// generates files for one of eleven target builders, verifies the result for
// residual dependencies, and packages everything with audit reports.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, zip/).
package pageport

// Package spyder ingests documents from local directories, crawled web sites
// and direct downloads into a local vector store, and answers questions
// against it.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, ollama/).
package spyder

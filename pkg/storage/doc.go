// Package storage moves the Elasticsearch data directory onto
// persistent storage.
//
// Migrator relocates the data directory onto a freshly attached
// volume and leaves a symlink at the old location, so configuration
// that refers to the old path keeps working. CopyTree is the archive
// copy it uses.
package storage

// Package configstore implements persistence for the device Configuration.
//
// A Store is a key to text-blob record store with no caching and no
// cross-key transactions. FileStore keeps one file per record in a directory
// (the SD card layout); RedisStore keeps one string key per record.
package configstore

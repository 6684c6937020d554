// Package bus implements the change notification channel.
//
// Two independent delivery paths coexist and are never collapsed into one:
//
//  1. In-process broadcast (Bus): dispatched synchronously by the storage
//     manager right after a successful write, carrying the already-decoded
//     new and old values. Same-process bindings on the same key apply the
//     value directly without a re-read.
//
//  2. Cross-process watcher (Watcher): an fsnotify observer on the file
//     store's backing file. It fires for writes made by other processes -
//     which the in-process bus cannot see - and deliberately carries no
//     payload, because on-disk bytes may need decryption or a non-default
//     codec. Consumers react by re-reading through the manager.
package bus

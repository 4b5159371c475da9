// Package redis implements store.Store on top of Redis using go-redis.
// Queues are Redis lists, the queue and worker registries are Redis sets,
// status records and counters are plain string keys. Every key is passed
// through verbatim; namespacing is the keyspace package's job.
//
// Either hand the store a client you own:
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redis.New(client)
//
// or let the store own one, in which case Close and Reconnect manage it:
//
//	s, err := redis.Open("redis://localhost:6379/0")
package redis

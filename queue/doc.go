// Package queue implements named FIFO queues over a backing store.
//
// A queue is an ordered list of serialized [job.Payload] values plus
// membership in the queue registry set. Push registers the name and then
// appends to the list tail; Pop atomically removes the list head. The two
// steps of Push are not transactional: a crash between them leaves a
// registered but empty queue, which is harmless.
//
// The registry is a superset of the queues holding work. Pop and Clear
// never remove a name from it; only [Service.RemoveQueue] does.
//
//	svc := queue.NewService(st, keyspace.New("resque"), logger)
//	_ = svc.Push(ctx, "mail", payload)
//	p, ok, err := svc.Pop(ctx, "mail")
package queue

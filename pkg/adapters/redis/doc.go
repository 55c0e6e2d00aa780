// Package redis provides the Redis session store and distributed locker.
package redis

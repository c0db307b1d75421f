/*
Package profile manages player profiles: the persisted global variables that
outlive a single dialogue run.

It serializes access per profile with reference-counted in-process locks and,
optionally, a distributed lock so that several replicas can share one store.
*/
package profile

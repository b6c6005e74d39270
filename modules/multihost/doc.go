// Package multihost submits sweep runs through the multi-host job launcher
// (multihost_job.py by default), one blocking process per run.
package multihost

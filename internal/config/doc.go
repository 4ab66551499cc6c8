// Package config defines the configuration of the periodic binary.
//
// Configuration is read with viper from a YAML file (and PERIODIC_*
// environment variables); unset fields are filled in by creasty/defaults
// from the `default` struct tags.
//
//	log_level: info        # zap level
//	log_format: console    # console or json
//	workers: 4             # worker pool size
//	history_size: 128      # in-memory run history per scheduler
//	database:
//	  path: periodic.db    # run journal (sqlite)
//	tasks:
//	  - name: beat
//	    kind: heartbeat    # heartbeat | runtime-stats | journal-prune
//	    start_delay: 0s
//	    repeat_delay: 10s
//
// Delays are Go duration strings. The repeat delay of a task is measured
// from the completion of one invocation to the start of the next.
package config

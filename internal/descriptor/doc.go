// Package descriptor defines the static declaration of services that stackup
// orchestrates and loads it from a YAML stack file.
//
// A stack file declares a set of named services. Each service carries the
// command to launch, the kind of service (long-running or one-shot), the names
// of services it depends on, environment entries to inject, exposed ports, and
// an optional readiness check. Example:
//
//	requiredEnv:
//	  - POSTGRES_PASSWORD
//	services:
//	  - name: db
//	    kind: long-running
//	    command: postgres
//	    ports: [5432]
//	    readyCheck:
//	      type: tcp
//	      port: 5432
//	  - name: migrate
//	    kind: one-shot
//	    command: aerich
//	    args: [upgrade]
//	    dependsOn: [db]
//	    env:
//	      POSTGRES_HOST: "{{ .POSTGRES_HOST }}"
//	    retry:
//	      attempts: 3
//	      backoff: 2s
//	  - name: api
//	    kind: long-running
//	    command: uvicorn
//	    dependsOn: [migrate]
//	    ports: [8000]
//
// Env values may be literal strings or templates rendered against the
// resolved configuration snapshot (see the template package).
//
// The descriptor set is defined once at load time and is static for the
// lifetime of a run. Structural validation (required fields, value ranges)
// uses go-playground/validator tags; semantic validation (unique names,
// check/kind consistency) is performed by Validate.
package descriptor

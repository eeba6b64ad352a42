// Package fixture loads seed datasets and writes them through a
// member.Repository.
//
// Datasets are YAML (.yaml, .yml) or CUE (.cue):
//
//	teams:
//	  - name: teamA
//	    members:
//	      - {username: member1, age: 10}
//	members:            # members without a team
//	  - {username: loner, age: 50}
//
// Default returns the canonical dataset used by `qdsl seed` without a file.
package fixture

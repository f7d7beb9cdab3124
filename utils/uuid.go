package utils

import "github.com/google/uuid"

// MachineUUID derives the deterministic machine credential id for a VM name
// (UUID v5 over the URL namespace). The same name always yields the same id,
// so the PAM module on the guest and the minting flow agree without sharing
// state.
func MachineUUID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Copyright (c) 2022 0x9ef. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package ethernetframe

// NativeVlan is the VLAN ID used by ports that do not belong to any VLAN.
const NativeVlan = 0

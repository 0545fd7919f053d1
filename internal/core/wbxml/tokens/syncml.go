package tokens

var syncml10Tags = Table{
	0: {
		0x05: "Add",
		0x06: "Alert",
		0x07: "Archive",
		0x08: "Atomic",
		0x09: "Chal",
		0x0a: "Cmd",
		0x0b: "CmdID",
		0x0c: "CmdRef",
		0x0d: "Copy",
		0x0e: "Cred",
		0x0f: "Data",
		0x10: "Delete",
		0x11: "Exec",
		0x12: "Final",
		0x13: "Get",
		0x14: "Item",
		0x15: "Lang",
		0x16: "LocName",
		0x17: "LocURI",
		0x18: "Map",
		0x19: "MapItem",
		0x1a: "Meta",
		0x1b: "MsgID",
		0x1c: "MsgRef",
		0x1d: "NoResp",
		0x1e: "NoResults",
		0x1f: "Put",
		0x20: "Replace",
		0x21: "RespURI",
		0x22: "Results",
		0x23: "Search",
		0x24: "Sequence",
		0x25: "SessionID",
		0x26: "SftDel",
		0x27: "Source",
		0x28: "SourceRef",
		0x29: "Status",
		0x2a: "Sync",
		0x2b: "SyncBody",
		0x2c: "SyncHdr",
		0x2d: "SyncML",
		0x2e: "Target",
		0x2f: "TargetRef",
		0x31: "VerDTD",
		0x32: "VerProto",
	},
	// MetInf
	1: {
		0x05: "Anchor",
		0x06: "EMI",
		0x07: "Format",
		0x08: "FreeID",
		0x09: "FreeMem",
		0x0a: "Last",
		0x0b: "Mark",
		0x0c: "MaxMsgSize",
		0x0d: "Mem",
		0x0e: "MetInf",
		0x0f: "Next",
		0x10: "NextNonce",
		0x11: "SharedMem",
		0x12: "Size",
		0x13: "Type",
		0x14: "Version",
	},
}

var (
	syncml11Tags = merge(syncml10Tags, Table{
		0: {0x33: "NumberOfChanges", 0x34: "MoreData"},
		1: {0x15: "MaxObjSize"},
	})
	syncml12Tags = merge(syncml11Tags, Table{
		0: {
			0x35: "Field",
			0x36: "Filter",
			0x37: "Record",
			0x38: "FilterType",
			0x39: "SourceParent",
			0x3a: "TargetParent",
			0x3b: "Move",
			0x3c: "Correlator",
		},
		1: {0x16: "FieldLevel"},
	})
)

var devinf10Tags = Table{
	0: {
		0x05: "CTCap",
		0x06: "CTType",
		0x07: "DataStore",
		0x08: "DataType",
		0x09: "DevID",
		0x0a: "DevInf",
		0x0b: "DevTyp",
		0x0c: "DisplayName",
		0x0d: "DSMem",
		0x0e: "Ext",
		0x0f: "FwV",
		0x10: "HwV",
		0x11: "Man",
		0x12: "MaxGUIDSize",
		0x13: "MaxID",
		0x14: "MaxMem",
		0x15: "Mod",
		0x16: "OEM",
		0x17: "ParamName",
		0x18: "PropName",
		0x19: "Rx",
		0x1a: "Rx-Pref",
		0x1b: "SharedMem",
		0x1c: "Size",
		0x1d: "SourceRef",
		0x1e: "SwV",
		0x1f: "SyncCap",
		0x20: "SyncType",
		0x21: "Tx",
		0x22: "Tx-Pref",
		0x23: "ValEnum",
		0x24: "VerCT",
		0x25: "VerDTD",
		0x26: "XNam",
		0x27: "XVal",
	},
}

var devinf11Tags = merge(devinf10Tags, Table{0: {
	0x28: "UTC",
	0x29: "SupportNumberOfChanges",
	0x2a: "SupportLargeObjs",
}})

var (
	SyncML10 = &Map{
		Name:     "SyncML 1.0",
		FormalID: "-//SYNCML//DTD SyncML 1.0//EN",
		Tags:     syncml10Tags,
		Codec:    syncmlCodec{},
	}
	SyncML11 = &Map{
		Name:     "SyncML 1.1",
		FormalID: "-//SYNCML//DTD SyncML 1.1//EN",
		Tags:     syncml11Tags,
		Codec:    syncmlCodec{},
	}
	SyncML12 = &Map{
		Name:     "SyncML 1.2",
		FormalID: "-//SYNCML//DTD SyncML 1.2//EN",
		Tags:     syncml12Tags,
		Codec:    syncmlCodec{},
	}
	DevInf10 = &Map{
		Name:     "DevInf 1.0",
		FormalID: "-//SYNCML//DTD DevInf 1.0//EN",
		Tags:     devinf10Tags,
		Codec:    syncmlCodec{},
	}
	DevInf11 = &Map{
		Name:     "DevInf 1.1",
		FormalID: "-//SYNCML//DTD DevInf 1.1//EN",
		Tags:     devinf11Tags,
		Codec:    syncmlCodec{},
	}
)

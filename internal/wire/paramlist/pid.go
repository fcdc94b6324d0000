package paramlist

// ParameterID names a TLV record's tag, per the PID table in §6.
type ParameterID uint16

// Recognized PIDs. Values match the RTPS discovery wire format given in
// the design's PID table.
const (
	PIDPad      ParameterID = 0x0000
	PIDSentinel ParameterID = 0x0001

	PIDTimeBasedFilter          ParameterID = 0x0004
	PIDTopicName                ParameterID = 0x0005
	PIDOwnershipStrength        ParameterID = 0x0006
	PIDTypeName                 ParameterID = 0x0007
	PIDParticipantLeaseDuration ParameterID = 0x0002

	PIDProtocolVersion ParameterID = 0x0015
	PIDVendorID        ParameterID = 0x0016

	PIDReliability       ParameterID = 0x001a
	PIDLiveliness        ParameterID = 0x001b
	PIDOwnership         ParameterID = 0x001f
	PIDDurability        ParameterID = 0x001d
	PIDDurabilityService ParameterID = 0x001e

	PIDPresentation     ParameterID = 0x0021
	PIDDeadline         ParameterID = 0x0023
	PIDDestinationOrder ParameterID = 0x0025
	PIDLatencyBudget    ParameterID = 0x0027
	PIDPartition        ParameterID = 0x0029
	PIDLifespan         ParameterID = 0x002b
	PIDUserData         ParameterID = 0x002c
	PIDGroupData        ParameterID = 0x002d
	PIDTopicData        ParameterID = 0x002e

	PIDUnicastLocator              ParameterID = 0x002f
	PIDMulticastLocator            ParameterID = 0x0030
	PIDDefaultUnicastLocator       ParameterID = 0x0031
	PIDMetatrafficUnicastLocator   ParameterID = 0x0032
	PIDMetatrafficMulticastLocator ParameterID = 0x0033

	PIDExpectsInlineQoS ParameterID = 0x0043
	PIDParticipantGUID  ParameterID = 0x0050

	PIDBuiltinEndpointSet     ParameterID = 0x0058
	PIDPropertyList           ParameterID = 0x0059
	PIDEndpointGUID           ParameterID = 0x005a
	PIDEntityName             ParameterID = 0x0062
	PIDKeyHash                ParameterID = 0x0070
	PIDDefaultMulticastLocator ParameterID = 0x0048
)

// sendAlwaysEndpointPIDs lists the PIDs always included on every encode of
// a writer/reader data record, regardless of per-policy dirty state
// (§4.1: "locators first, then participant GUID, topic name, type name,
// key hash, endpoint GUID, then each QoS that is either send-always or has
// hasChanged==true"). Reliability is send-always because matching depends
// on it being present on every announcement, not just the first.
var sendAlwaysEndpointPIDs = []ParameterID{
	PIDUnicastLocator,
	PIDMulticastLocator,
	PIDParticipantGUID,
	PIDTopicName,
	PIDTypeName,
	// PIDKeyHash is listed for ordering purposes only: WriterDataToParameters
	// and ReaderDataToParameters actually emit it solely when UserDefinedID
	// is non-zero, since it carries that id rather than a true key hash.
	PIDKeyHash,
	PIDEndpointGUID,
	PIDReliability,
}

package errors

// ERR identifies the class of an Error. The numeric values are part of the
// external contract and must not be renumbered.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_ERROR            ERR = 1
	ERR_INVALID_ARGUMENT ERR = 2
	ERR_NOT_FOUND        ERR = 3
	ERR_PROCESSING       ERR = 4
	ERR_CONFIGURATION    ERR = 5
	ERR_SERVICE_ERROR    ERR = 6
	ERR_STORAGE_ERROR    ERR = 7

	ERR_INVALID_FORMAT        ERR = 20
	ERR_TX_DECODE             ERR = 21
	ERR_TX_INVALID            ERR = 22
	ERR_INVALID_DESTINATION   ERR = 23
	ERR_DUPLICATE_DESTINATION ERR = 24
	ERR_SCRIPT_MISMATCH       ERR = 25

	ERR_MISSING_PRIOR_OUTPUT ERR = 30
	ERR_INCOMPLETE_SIGNATURE ERR = 31

	ERR_TX_ALREADY_PENDING   ERR = 40
	ERR_TX_ALREADY_COMMITTED ERR = 41
	ERR_ADMISSION_REJECTED   ERR = 42

	ERR_WORKFLOW_ABORTED ERR = 50
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "ERROR",
	2:  "INVALID_ARGUMENT",
	3:  "NOT_FOUND",
	4:  "PROCESSING",
	5:  "CONFIGURATION",
	6:  "SERVICE_ERROR",
	7:  "STORAGE_ERROR",
	20: "INVALID_FORMAT",
	21: "TX_DECODE",
	22: "TX_INVALID",
	23: "INVALID_DESTINATION",
	24: "DUPLICATE_DESTINATION",
	25: "SCRIPT_MISMATCH",
	30: "MISSING_PRIOR_OUTPUT",
	31: "INCOMPLETE_SIGNATURE",
	40: "TX_ALREADY_PENDING",
	41: "TX_ALREADY_COMMITTED",
	42: "ADMISSION_REJECTED",
	50: "WORKFLOW_ABORTED",
}

func (e ERR) String() string {
	if name, ok := ERR_name[int32(e)]; ok {
		return name
	}

	return "UNKNOWN"
}

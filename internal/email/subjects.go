package email

const subjectThumbnailRetriesExhaustedFmt = "[media] Receipt thumbnail failed permanently: %s"
